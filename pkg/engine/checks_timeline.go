package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
	"github.com/Ramsey-B/sage/pkg/timeline"
)

// checkGaps flags uncovered months in a named timeline section for every
// adult member. The observation window runs from the later of the
// member's 18th-birthday month and (now - lookback years) through the
// current month; minors are exempt entirely.
func checkGaps(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.GapCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	if cfg.Section == "" {
		return nil, fmt.Errorf("gap_check rule %s has no section configured", rule.ID)
	}
	lookback := cfg.LookbackYears
	if lookback <= 0 {
		lookback = run.cfg.LookbackYears
	}

	nowKey := normalizers.MonthKeyFromTime(run.now)

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		if member.IsMinor() {
			continue
		}

		ext := run.snap.ExtractsFor(member.ID)
		if ext.Identity == nil {
			continue // no form extracted; required_doc_check owns that complaint
		}
		rows := ext.Identity.Sections[cfg.Section]
		if len(rows) == 0 {
			continue
		}

		windowStart := nowKey - normalizers.MonthKey(lookback*12) + 1
		if member.DateOfBirth != nil {
			if dobKey, err := normalizers.ParseMonth(*member.DateOfBirth); err == nil {
				adultKey := dobKey + normalizers.MonthKey(models.AdultAge*12)
				if adultKey > windowStart {
					windowStart = adultKey
				}
			}
		}
		if windowStart > nowKey {
			continue
		}

		window := timeline.Span{Start: windowStart, End: nowKey}
		gaps := timeline.Gaps(rows, window, run.now)

		if len(gaps) == 0 {
			f := ruleFinding(rule, member, models.FindingStatusPass)
			f.Summary = fmt.Sprintf("%s timeline for %s has no gaps in the observation window", cfg.Section, member.FullName)
			f.Details = map[string]any{"section": cfg.Section, "window": window}
			findings = append(findings, f)
			continue
		}

		totalMonths := 0
		gapStrings := make([]string, 0, len(gaps))
		for _, g := range gaps {
			totalMonths += g.Months()
			gapStrings = append(gapStrings, fmt.Sprintf("%s to %s", g.Start, g.End))
		}

		vars := map[string]string{
			"member_name": member.FullName,
			"section":     cfg.Section,
			"months":      fmt.Sprintf("%d", totalMonths),
			"gaps":        strings.Join(gapStrings, "; "),
		}

		f := ruleFinding(rule, member, models.FindingStatusFail)
		f.Summary = fmt.Sprintf("%s timeline for %s has %d uncovered month(s)", cfg.Section, member.FullName, totalMonths)
		f.Recommendation = fmt.Sprintf("Request %s history covering: %s.", cfg.Section, strings.Join(gapStrings, "; "))
		f.ClientMessage = renderClientMessage(rule.MessageTemplate,
			fmt.Sprintf("The %s history for %s has unexplained periods (%s). Please provide what %s was doing during these months.",
				cfg.Section, member.FullName, strings.Join(gapStrings, "; "), member.FullName),
			vars)
		f.Details = map[string]any{
			"section": cfg.Section,
			"window":  window,
			"gaps":    gaps,
			"months":  totalMonths,
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// checkOverlaps flags pairs of same-category timeline rows whose months
// overlap. Overlapping rows in different categories (studying while
// residing somewhere) are deliberately not flagged.
func checkOverlaps(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.OverlapCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	if cfg.Section == "" {
		return nil, fmt.Errorf("overlap_check rule %s has no section configured", rule.ID)
	}

	conflictable := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		conflictable[strings.ToLower(strings.TrimSpace(c))] = true
	}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		ext := run.snap.ExtractsFor(member.ID)
		if ext.Identity == nil {
			continue
		}
		rows := ext.Identity.Sections[cfg.Section]
		if len(rows) == 0 {
			continue
		}

		// Group rows by comparability category; only rows sharing a
		// category can conflict with each other.
		groups := make(map[string][]int)
		for idx, row := range rows {
			cat := strings.ToLower(strings.TrimSpace(row.Category))
			if cat == "" {
				continue
			}
			if len(conflictable) > 0 && !conflictable[cat] {
				continue
			}
			groups[cat] = append(groups[cat], idx)
		}

		overlapped := false
		for cat, indexes := range groups {
			group := make([]models.IntervalRow, len(indexes))
			for gi, ri := range indexes {
				group[gi] = rows[ri]
			}
			for _, ov := range timeline.Overlaps(group, run.now) {
				overlapped = true
				rowA := group[ov.RowA]
				rowB := group[ov.RowB]
				vars := map[string]string{
					"member_name": member.FullName,
					"section":     cfg.Section,
					"months":      fmt.Sprintf("%d", ov.Span.Months()),
				}

				f := ruleFinding(rule, member, models.FindingStatusFail)
				f.Summary = fmt.Sprintf("two %s rows for %s overlap from %s to %s", cat, member.FullName, ov.Span.Start, ov.Span.End)
				f.Recommendation = "Confirm which of the overlapping entries is correct, or whether both are."
				f.ClientMessage = renderClientMessage(rule.MessageTemplate,
					fmt.Sprintf("Two %s entries for %s cover the same period (%s to %s): %q and %q. Please confirm the dates.",
						cat, member.FullName, ov.Span.Start, ov.Span.End, rowA.Description, rowB.Description),
					vars)
				f.Details = map[string]any{
					"section":  cfg.Section,
					"category": cat,
					"row_a":    rowA,
					"row_b":    rowB,
					"overlap":  ov.Span,
				}
				findings = append(findings, f)
			}
		}

		if !overlapped {
			f := ruleFinding(rule, member, models.FindingStatusPass)
			f.Summary = fmt.Sprintf("no conflicting %s entries for %s", cfg.Section, member.FullName)
			f.Details = map[string]any{"section": cfg.Section}
			findings = append(findings, f)
		}
	}
	return findings, nil
}

// checkYearsBox compares the months actually covered by a timeline
// section against the member's self-declared total for that category.
func checkYearsBox(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.YearsBoxCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	if cfg.Section == "" {
		return nil, fmt.Errorf("years_box_check rule %s has no section configured", rule.ID)
	}
	tolerance := cfg.ToleranceYears
	if tolerance <= 0 {
		tolerance = 0.5
	}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		ext := run.snap.ExtractsFor(member.ID)
		if ext.Identity == nil {
			continue
		}
		declared, ok := ext.Identity.DeclaredYears[cfg.Section]
		if !ok {
			continue // nothing declared; absence is not a mismatch
		}
		rows := ext.Identity.Sections[cfg.Section]
		computed := float64(timeline.CoveredMonths(rows, run.now)) / 12.0

		vars := map[string]string{
			"member_name":    member.FullName,
			"section":        cfg.Section,
			"declared_years": fmt.Sprintf("%.1f", declared),
			"computed_years": fmt.Sprintf("%.1f", computed),
		}

		if math.Abs(computed-declared) > tolerance {
			f := ruleFinding(rule, member, models.FindingStatusFail)
			f.Summary = fmt.Sprintf("declared %s total %.1f years but the timeline covers %.1f years", cfg.Section, declared, computed)
			f.Recommendation = "Reconcile the declared total with the listed entries."
			f.ClientMessage = renderClientMessage(rule.MessageTemplate,
				fmt.Sprintf("The form declares %.1f years of %s for %s, but the entries listed add up to %.1f years. Please double-check the total or the entries.",
					declared, cfg.Section, member.FullName, computed),
				vars)
			f.Details = map[string]any{
				"section":        cfg.Section,
				"declared_years": declared,
				"computed_years": computed,
				"tolerance":      tolerance,
			}
			findings = append(findings, f)
			continue
		}

		f := ruleFinding(rule, member, models.FindingStatusPass)
		f.Summary = fmt.Sprintf("declared %s total matches the timeline (%.1f years)", cfg.Section, declared)
		f.Details = map[string]any{"section": cfg.Section, "declared_years": declared, "computed_years": computed}
		findings = append(findings, f)
	}
	return findings, nil
}
