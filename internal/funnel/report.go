// File: internal/funnel/report.go
package funnel

import (
	"fmt"
	"sort"
	"strings"
)

// VariantTally accumulates results for one variant.
type VariantTally struct {
	Exposures    int
	MessagesSent int
	Feedback     int
	VideoClicks  int
	Errored      int
}

// ConversionRate is messages sent over exposures, the experiment's primary
// metric.
func (t *VariantTally) ConversionRate() float64 {
	if t.Exposures == 0 {
		return 0
	}
	return float64(t.MessagesSent) / float64(t.Exposures)
}

// Report is the aggregate outcome of a funnel run.
type Report struct {
	Skipped  bool
	Control  string
	Variants map[string]*VariantTally
}

func (r *Report) record(variant string, o sessionOutcome) {
	t := r.Variants[variant]
	t.Exposures++
	if o.errored {
		t.Errored++
	}
	if o.engagement.MessageSent {
		t.MessagesSent++
	}
	if o.engagement.Feedback {
		t.Feedback++
	}
	if o.engagement.VideoClicked {
		t.VideoClicks++
	}
}

// Lift returns the relative conversion lift of a variant against the control:
// (variantRate - controlRate) / controlRate, as a percentage.
func (r *Report) Lift(variant string) float64 {
	control, ok := r.Variants[r.Control]
	if !ok || control.ConversionRate() == 0 {
		return 0
	}
	v, ok := r.Variants[variant]
	if !ok {
		return 0
	}
	cr := control.ConversionRate()
	return (v.ConversionRate() - cr) / cr * 100.0
}

// String renders the per-variant summary table.
func (r *Report) String() string {
	if r.Skipped {
		return "funnel run skipped: experiment end date has passed\n"
	}

	names := make([]string, 0, len(r.Variants))
	for name := range r.Variants {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%-22s %9s %9s %9s %8s %8s\n",
		"variant", "exposures", "messages", "feedback", "rate", "lift")
	for _, name := range names {
		t := r.Variants[name]
		lift := "-"
		if name != r.Control {
			lift = fmt.Sprintf("%+.1f%%", r.Lift(name))
		}
		fmt.Fprintf(&b, "%-22s %9d %9d %9d %7.1f%% %8s\n",
			name, t.Exposures, t.MessagesSent, t.Feedback, t.ConversionRate()*100, lift)
	}
	return b.String()
}
