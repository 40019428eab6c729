package engine

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// SectionEducation routes date_match_check to the education evidence
// scorer instead of plain date corroboration
const SectionEducation = "education"

// checkDateMatch verifies that declared timeline rows are corroborated by
// supporting evidence. The education section uses the multi-factor
// evidence scorer; other sections corroborate row ranges against the
// dates extracted from evidence documents naming the member.
func checkDateMatch(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.DateMatchCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	tolerance := cfg.ToleranceMonths
	if tolerance <= 0 {
		tolerance = run.cfg.EvidenceToleranceMonths
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = run.cfg.EvidenceThreshold
	}

	if cfg.Section == SectionEducation {
		return checkEducationEvidence(run, rule, threshold, tolerance)
	}
	return checkSectionDates(run, rule, cfg.Section, tolerance)
}

// checkEducationEvidence matches declared education rows against
// extracted education claims with the weighted scorer. Candidates below
// threshold surface as a warning listing scores; that is reviewer
// judgment, not a system error.
func checkEducationEvidence(run *checkRun, rule models.Rule, threshold float64, tolerance int) ([]models.Finding, error) {
	scorer := &matching.Scorer{Threshold: threshold, ToleranceMonths: tolerance}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		ext := run.snap.ExtractsFor(member.ID)
		if ext.Identity == nil || len(ext.Identity.Education) == 0 {
			continue
		}
		if len(ext.Education) == 0 {
			continue // no claims extracted; nothing to corroborate against
		}

		for _, row := range ext.Identity.Education {
			vars := map[string]string{
				"member_name": member.FullName,
				"institution": row.Institution,
				"section":     SectionEducation,
			}

			best, ok := scorer.FindBestMatch(row, ext.Education, run.now)
			if ok {
				f := ruleFinding(rule, member, models.FindingStatusPass)
				f.Summary = fmt.Sprintf("education at %s corroborated by evidence (score %.2f)", row.Institution, best.Breakdown.Total)
				f.DocumentIDs = []string{best.Claim.DocumentID}
				f.Details = map[string]any{
					"row":       row,
					"claim":     best.Claim,
					"breakdown": best.Breakdown,
				}
				findings = append(findings, f)
				continue
			}

			// Candidates exist but none clears the threshold: ambiguous.
			ranked := scorer.RankCandidates(row, ext.Education, run.now)
			top := ranked
			if len(top) > 3 {
				top = top[:3]
			}
			candidates := make([]map[string]any, 0, len(top))
			docIDs := make([]string, 0, len(top))
			for _, cand := range top {
				candidates = append(candidates, map[string]any{
					"institution": cand.Claim.Institution,
					"document_id": cand.Claim.DocumentID,
					"score":       cand.Breakdown.Total,
				})
				docIDs = append(docIDs, cand.Claim.DocumentID)
			}

			f := ruleFinding(rule, member, models.FindingStatusFail)
			f.Severity = models.SeverityWarning
			f.Summary = fmt.Sprintf("no evidence clearly corroborates education at %s (best score below %.2f)", row.Institution, threshold)
			f.Recommendation = "Review the candidate documents manually; none scored high enough to match automatically."
			f.ClientMessage = renderClientMessage(rule.MessageTemplate,
				fmt.Sprintf("We could not confidently match any uploaded document to the declared education at %s for %s.", row.Institution, member.FullName),
				vars)
			f.DocumentIDs = docIDs
			f.Details = map[string]any{
				"row":        row,
				"threshold":  threshold,
				"candidates": candidates,
			}
			findings = append(findings, f)
		}
	}
	return findings, nil
}

// checkSectionDates corroborates section rows against the date strings
// extracted from evidence documents naming the member
func checkSectionDates(run *checkRun, rule models.Rule, section string, tolerance int) ([]models.Finding, error) {
	if section == "" {
		return nil, fmt.Errorf("date_match_check rule %s has no section configured", rule.ID)
	}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		ext := run.snap.ExtractsFor(member.ID)
		if ext.Identity == nil {
			continue
		}
		rows := ext.Identity.Sections[section]
		if len(rows) == 0 || len(ext.Evidence) == 0 {
			continue
		}

		// Evidence dates from claims naming this member, at any tier
		type evidenceDate struct {
			key   normalizers.MonthKey
			docID string
		}
		var dates []evidenceDate
		for _, claim := range ext.Evidence {
			if matching.MatchNames(claim.PersonName, member.FullName, run.cfg.FuzzyNameThreshold) == matching.TierNone {
				continue
			}
			for _, d := range claim.Dates {
				if key, err := normalizers.ResolveMonth(d, run.now); err == nil {
					dates = append(dates, evidenceDate{key: key, docID: claim.DocumentID})
				}
			}
		}
		if len(dates) == 0 {
			continue
		}

		for idx, row := range rows {
			if row.From == nil || row.To == nil {
				continue
			}
			start, err := normalizers.ResolveMonth(*row.From, run.now)
			if err != nil {
				continue
			}
			end, err := normalizers.ResolveMonth(*row.To, run.now)
			if err != nil {
				continue
			}

			var corroborating []string
			for _, d := range dates {
				if d.key >= start-normalizers.MonthKey(tolerance) && d.key <= end+normalizers.MonthKey(tolerance) {
					corroborating = appendUnique(corroborating, d.docID)
				}
			}

			vars := map[string]string{
				"member_name": member.FullName,
				"section":     section,
			}

			if len(corroborating) > 0 {
				f := ruleFinding(rule, member, models.FindingStatusPass)
				f.Summary = fmt.Sprintf("%s row %d (%s to %s) corroborated by evidence", section, idx, *row.From, *row.To)
				f.DocumentIDs = corroborating
				f.Details = map[string]any{"section": section, "row": row, "documents": corroborating}
				findings = append(findings, f)
				continue
			}

			f := ruleFinding(rule, member, models.FindingStatusFail)
			f.Summary = fmt.Sprintf("no evidence dates support %s row %d (%s to %s)", section, idx, *row.From, *row.To)
			f.Recommendation = "Request supporting evidence covering this period."
			f.ClientMessage = renderClientMessage(rule.MessageTemplate,
				fmt.Sprintf("The %s entry from %s to %s for %s (%s) is not supported by any uploaded document.",
					section, *row.From, *row.To, member.FullName, strings.TrimSpace(row.Description)),
				vars)
			f.Details = map[string]any{"section": section, "row": row}
			findings = append(findings, f)
		}
	}
	return findings, nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
