package result

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteReport renders a plain-text connection analysis: the graph summary,
// the most central values and every value shared by more than one record.
func WriteReport(w io.Writer, resp *Response) error {
	s := resp.Summary
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Graph Summary")
	fmt.Fprintf(tw, "  nodes\t%d\n", s.NodeCount)
	fmt.Fprintf(tw, "  edges\t%d\n", s.EdgeCount)
	fmt.Fprintf(tw, "  records\t%d\n", s.RecordCount)
	fmt.Fprintf(tw, "  density\t%.4f\n", s.Density)
	fmt.Fprintf(tw, "  components\t%d\n", s.ComponentCount)
	fmt.Fprintf(tw, "  average clustering\t%.4f\n", s.AverageClustering)
	if s.CommunityCount != nil && s.Modularity != nil {
		fmt.Fprintf(tw, "  communities\t%d (%s, modularity %.4f)\n", *s.CommunityCount, s.CommunityMethod, *s.Modularity)
	} else {
		fmt.Fprintf(tw, "  communities\tn/a\n")
	}
	fmt.Fprintf(tw, "  layout\t%s (%d iterations", resp.Layout.Algorithm, resp.Layout.Iterations)
	if resp.Layout.Truncated {
		fmt.Fprint(tw, ", truncated")
	}
	fmt.Fprintln(tw, ")")

	if s.Empty {
		fmt.Fprintln(tw, "\nNo values supplied.")
		return tw.Flush()
	}

	if len(s.TopK) > 0 {
		fmt.Fprintln(tw, "\nMost Central Values")
		fmt.Fprintln(tw, "  value\tfield\tdegree\tcentrality")
		for _, r := range s.TopK {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%.4f\n", r.ID, r.FieldID, r.Degree, r.DegreeCentrality)
		}
	}

	fmt.Fprintln(tw, "\nConnection Analysis")
	if len(resp.SharedConnections) == 0 {
		fmt.Fprintln(tw, "  No shared connections found.")
	} else {
		fmt.Fprintln(tw, "  value\tfield\tconnections")
		for _, c := range resp.SharedConnections {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", c.ID, c.FieldID, c.Degree)
		}
	}

	if len(resp.CrossFieldValues) > 0 {
		fmt.Fprintln(tw, "\nValues Seen Under Several Fields")
		for _, v := range resp.CrossFieldValues {
			fmt.Fprintf(tw, "  %s\t%s\n", v.ID, strings.Join(v.Fields, ", "))
		}
	}

	return tw.Flush()
}
