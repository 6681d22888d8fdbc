package visualization

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
)

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// WriteSVG draws the scene: edges first, then nodes, then a legend ramp.
func (s *Scene) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	pos := make(map[string]SceneNode, len(s.Nodes))
	for _, n := range s.Nodes {
		pos[n.ID] = n
	}

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(bw, `<text x="%g" y="24" font-family="sans-serif" font-size="18" text-anchor="middle">%s</text>`+"\n",
		s.Width/2, escape(s.Title))

	if s.Directed {
		fmt.Fprint(bw, `<defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="4" markerHeight="4" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="#999999"/></marker></defs>`+"\n")
	}

	fmt.Fprintln(bw, `<g stroke="#999999" stroke-opacity="0.5">`)
	for _, e := range s.Edges {
		from, to := pos[e.From], pos[e.To]
		marker := ""
		if s.Directed {
			marker = ` marker-end="url(#arrow)"`
		}
		fmt.Fprintf(bw, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="%d"%s/>`+"\n",
			from.X, from.Y, to.X, to.Y, max(e.Weight, 1), marker)
	}
	fmt.Fprintln(bw, `</g>`)

	fmt.Fprintln(bw, `<g stroke="#333333" stroke-width="0.5">`)
	for _, n := range s.Nodes {
		fmt.Fprintf(bw, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s: %.6g</title></circle>`+"\n",
			n.X, n.Y, n.Radius, n.Color, escape(n.ID), n.Value)
	}
	fmt.Fprintln(bw, `</g>`)

	// Legend
	lx, ly := s.Width-170, s.Height-30
	for i := 0; i < 10; i++ {
		fmt.Fprintf(bw, `<rect x="%g" y="%g" width="15" height="10" fill="%s"/>`+"\n",
			lx+float64(i)*15, ly, Color(float64(i)/9))
	}
	fmt.Fprintf(bw, `<text x="%g" y="%g" font-family="sans-serif" font-size="11">%s</text>`+"\n",
		lx, ly-4, escape(s.Metric))

	fmt.Fprintln(bw, `</svg>`)
	return bw.Flush()
}

// WriteDegreeDistributionSVG draws count against degree on log-log axes.
// Degree-zero points have no logarithm and are left out.
func WriteDegreeDistributionSVG(w io.Writer, dist []algorithms.DegreeCount, title string, width, height float64) error {
	const margin = 60.0
	bw := bufio.NewWriter(w)

	var pts []algorithms.DegreeCount
	maxDeg, maxCount := 1, 1
	for _, d := range dist {
		if d.Degree <= 0 || d.Count <= 0 {
			continue
		}
		pts = append(pts, d)
		maxDeg = max(maxDeg, d.Degree)
		maxCount = max(maxCount, d.Count)
	}

	// Axes span whole decades
	xDecades := math.Max(math.Ceil(math.Log10(float64(maxDeg))), 1)
	yDecades := math.Max(math.Ceil(math.Log10(float64(maxCount))), 1)
	plotW, plotH := width-2*margin, height-2*margin
	x := func(deg int) float64 { return margin + math.Log10(float64(deg))/xDecades*plotW }
	y := func(count int) float64 { return height - margin - math.Log10(float64(count))/yDecades*plotH }

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(bw, `<text x="%g" y="24" font-family="sans-serif" font-size="18" text-anchor="middle">%s</text>`+"\n",
		width/2, escape(title))

	// Axes and decade ticks
	fmt.Fprintf(bw, `<g stroke="#000000"><line x1="%g" y1="%g" x2="%g" y2="%g"/><line x1="%g" y1="%g" x2="%g" y2="%g"/></g>`+"\n",
		margin, height-margin, width-margin, height-margin, margin, margin, margin, height-margin)
	for d := 0; d <= int(xDecades); d++ {
		px := margin + float64(d)/xDecades*plotW
		fmt.Fprintf(bw, `<text x="%g" y="%g" font-family="sans-serif" font-size="11" text-anchor="middle">1e%d</text>`+"\n",
			px, height-margin+16, d)
	}
	for d := 0; d <= int(yDecades); d++ {
		py := height - margin - float64(d)/yDecades*plotH
		fmt.Fprintf(bw, `<text x="%g" y="%g" font-family="sans-serif" font-size="11" text-anchor="end">1e%d</text>`+"\n",
			margin-6, py+4, d)
	}
	fmt.Fprintf(bw, `<text x="%g" y="%g" font-family="sans-serif" font-size="13" text-anchor="middle">Degree</text>`+"\n",
		width/2, height-margin/3)
	fmt.Fprintf(bw, `<text x="%g" y="%g" font-family="sans-serif" font-size="13" text-anchor="middle" transform="rotate(-90 %g %g)">Count</text>`+"\n",
		margin/3, height/2, margin/3, height/2)

	fmt.Fprintln(bw, `<g fill="#3b528b">`)
	for _, p := range pts {
		fmt.Fprintf(bw, `<circle cx="%.2f" cy="%.2f" r="4"><title>degree %d: %d</title></circle>`+"\n",
			x(p.Degree), y(p.Count), p.Degree, p.Count)
	}
	fmt.Fprintln(bw, `</g>`)
	fmt.Fprintln(bw, `</svg>`)
	return bw.Flush()
}
