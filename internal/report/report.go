// Package report summarizes how completely the resources in a canonical
// export are tagged.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"tagexport/internal/tags"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Summary holds completeness figures for one report.
type Summary struct {
	Path  string
	Total int
	// Tagged[i] counts records carrying a value for tags.TagFields[i].
	Tagged [tags.NumTagFields]int
	// Distribution[n] counts records with exactly n tracked tags.
	Distribution [tags.NumTagFields + 1]int
	// Services counts records per service.
	Services map[string]int
	// MissingARNs counts records exported without an ARN.
	MissingARNs int
	// MalformedARNs counts records whose ARN does not parse.
	MalformedARNs int
	// Accounts counts records per account id taken from their ARN.
	Accounts map[string]int
}

// Summarize computes the summary of records written to path.
func Summarize(path string, records []tags.CanonicalRecord) Summary {
	s := Summary{
		Path:     path,
		Total:    len(records),
		Services: make(map[string]int),
		Accounts: make(map[string]int),
	}
	for _, r := range records {
		for i, v := range r.TagValues {
			if v != tags.Sentinel {
				s.Tagged[i]++
			}
		}
		if r.Tags >= 0 && r.Tags <= tags.NumTagFields {
			s.Distribution[r.Tags]++
		}
		s.Services[r.Service]++

		if r.ARN == tags.Sentinel {
			s.MissingARNs++
			continue
		}
		parsed, ok := parseARN(r.ARN)
		if !ok {
			s.MalformedARNs++
			continue
		}
		if parsed.AccountID != "" {
			s.Accounts[parsed.AccountID]++
		}
	}
	return s
}

func parseARN(s string) (arn.ARN, bool) {
	if !arn.IsARN(s) {
		return arn.ARN{}, false
	}
	a, err := arn.Parse(s)
	return a, err == nil
}

// FullyTagged returns the number of records carrying every tracked tag.
func (s Summary) FullyTagged() int {
	return s.Distribution[tags.NumTagFields]
}

// Coverage returns the share of records carrying tag field i, in percent.
func (s Summary) Coverage(i int) float64 {
	if s.Total == 0 || i < 0 || i >= tags.NumTagFields {
		return 0
	}
	return float64(s.Tagged[i]) / float64(s.Total) * 100
}

// Render writes the summary as tables to w.
func (s Summary) Render(w io.Writer) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "\nExported %d resources to %s\n", s.Total, s.Path)

	if s.Total == 0 {
		color.New(color.FgYellow).Fprintln(w, "The export contained no resources.")
		return
	}

	fmt.Fprintln(w, "\nTag coverage:")
	coverage := tablewriter.NewWriter(w)
	coverage.SetHeader([]string{"Tag", "Resources", "Coverage"})
	coverage.SetAutoFormatHeaders(false)
	coverage.SetAlignment(tablewriter.ALIGN_LEFT)
	coverage.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for i, name := range tags.TagFields {
		coverage.Append([]string{
			name,
			strconv.Itoa(s.Tagged[i]),
			fmt.Sprintf("%.1f%%", s.Coverage(i)),
		})
	}
	coverage.Render()

	fmt.Fprintln(w, "\nTags per resource:")
	dist := tablewriter.NewWriter(w)
	dist.SetHeader([]string{"Tags", "Resources"})
	dist.SetAutoFormatHeaders(false)
	dist.SetAlignment(tablewriter.ALIGN_LEFT)
	dist.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for n, count := range s.Distribution {
		dist.Append([]string{strconv.Itoa(n), strconv.Itoa(count)})
	}
	dist.Render()

	fmt.Fprintln(w, "\nResources per service:")
	svc := tablewriter.NewWriter(w)
	svc.SetHeader([]string{"Service", "Resources"})
	svc.SetAutoFormatHeaders(false)
	svc.SetAlignment(tablewriter.ALIGN_LEFT)
	svc.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, name := range byCount(s.Services) {
		svc.Append([]string{name, strconv.Itoa(s.Services[name])})
	}
	svc.Render()

	// Global resources such as S3 buckets carry no account in their ARN.
	if len(s.Accounts) > 1 {
		fmt.Fprintln(w, "\nResources per account:")
		acct := tablewriter.NewWriter(w)
		acct.SetHeader([]string{"Account", "Resources"})
		acct.SetAutoFormatHeaders(false)
		acct.SetAlignment(tablewriter.ALIGN_LEFT)
		acct.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		for _, id := range byCount(s.Accounts) {
			acct.Append([]string{id, strconv.Itoa(s.Accounts[id])})
		}
		acct.Render()
	}

	if s.MissingARNs > 0 || s.MalformedARNs > 0 {
		color.New(color.FgYellow).Fprintf(w, "\nARNs missing: %d, malformed: %d\n", s.MissingARNs, s.MalformedARNs)
	}
	if full := s.FullyTagged(); full == s.Total {
		color.New(color.FgGreen).Fprintln(w, "\nAll resources carry every tracked tag.")
	} else {
		fmt.Fprintf(w, "\n%d of %d resources carry every tracked tag.\n", full, s.Total)
	}
}

// byCount orders keys by descending count, then name.
func byCount(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := counts[names[i]], counts[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}
