package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
)

// ErrSlotNotFound indicates a chart text location that does not exist in the
// chart part.
var ErrSlotNotFound = errors.New("chart text not found")

// SlotKind identifies a text-bearing part of a chart.
type SlotKind int

const (
	// SlotTitle is the chart title.
	SlotTitle SlotKind = iota
	// SlotSeries is the name of one series.
	SlotSeries
	// SlotAxisTitle is the title of the category or value axis.
	SlotAxisTitle
)

// SlotKey locates one text slot within a chart part.
type SlotKey struct {
	Kind SlotKind
	// Series is the 1-based series index (SlotSeries only).
	Series int
	// Axis is the titled axis (SlotAxisTitle only).
	Axis address.AxisKind
}

// SlotKeyFor maps a chart address to its slot.
func SlotKeyFor(a address.Address) (SlotKey, error) {
	switch a.Kind {
	case address.KindChartTitle, address.KindLegacyChart:
		return SlotKey{Kind: SlotTitle}, nil
	case address.KindChartSeries:
		return SlotKey{Kind: SlotSeries, Series: a.Series}, nil
	case address.KindChartAxis:
		return SlotKey{Kind: SlotAxisTitle, Axis: a.Axis}, nil
	}
	return SlotKey{}, fmt.Errorf("address %s does not point into a chart", a)
}

// ChartSlot is one text slot found in a chart part.
type ChartSlot struct {
	Key SlotKey
	// Text is the displayed text. Rich text paragraphs are joined with '\n'.
	Text string
	// NameRange is the cell reference the text is cached from, if any.
	NameRange string

	nodes []textNode
	// run properties of title slots, targets of font substitution
	fonts []fontProps
	// axis element and position, used to classify axis titles
	axisElem string
	axisPos  string
}

// textNode is the byte span of the content of one <a:t> or <c:v> element.
type textNode struct {
	start, end int
	// selfClosing nodes span the whole empty element; qname is needed to
	// expand them.
	selfClosing bool
	qname       string
	rich        bool
	paragraph   int
	text        string
}

// span is a byte range of a chart part.
type span struct {
	start, end int
}

// fontProps locates one rPr or defRPr element of a title. A bare run has no
// run properties; open is then the end of its <a:r> start tag.
type fontProps struct {
	open        int
	close       int
	selfClosing bool
	bare        bool
	qname       string
	latin, ea   span
	// start of the first child that must follow ea, 0 when none
	before int
}

// chartScan is the result of walking a chart part.
type chartScan struct {
	chartType string
	slots     []ChartSlot
}

// scanChart walks a chart part and records the chart type and the byte spans
// of every translatable text node.
func scanChart(data []byte) (*chartScan, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	result := &chartScan{}

	var (
		stack     []string
		current   *ChartSlot
		slotDepth int
		paragraph int
		series    int
		axisElem  string
		axisPos   string
		sawCatAx  bool

		props      = -1
		propsDepth int
		run        = -1
		runDepth   int
		child      *span
		childDepth int
	)

	parent := func() string {
		if len(stack) < 2 {
			return ""
		}
		return stack[len(stack)-2]
	}
	inStack := func(name string) bool {
		for _, s := range stack {
			if s == name {
				return true
			}
		}
		return false
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			name := t.Name.Local
			offset := int(decoder.InputOffset())

			if current != nil && (name == "t" || name == "v") && (name == "t") == inStack("rich") {
				node, err := readTextNode(decoder, data, offset, t)
				if err != nil {
					return nil, err
				}
				node.rich = name == "t"
				node.paragraph = paragraph
				current.nodes = append(current.nodes, node)
				continue
			}

			stack = append(stack, name)
			switch {
			case name == "p" && current != nil:
				paragraph++
			case inStack("plotArea") && parent() == "plotArea" && result.chartType == "":
				if ct, ok := ChartTypeMap[name]; ok {
					result.chartType = ct
				}
			}

			if current != nil && current.Key.Kind != SlotSeries {
				switch {
				case name == "r" && inStack("rich"):
					current.fonts = append(current.fonts, fontProps{
						open:  offset,
						bare:  true,
						qname: prefixOf(data, offset) + "rPr",
					})
					run, runDepth = len(current.fonts)-1, len(stack)
				case name == "rPr" && parent() == "r" || name == "defRPr":
					fp := fontProps{open: offset, qname: prefixOf(data, offset) + name}
					fp.selfClosing = offset >= 2 && string(data[offset-2:offset]) == "/>"
					if name == "rPr" && run >= 0 {
						current.fonts[run] = fp
						props = run
						run = -1
					} else {
						current.fonts = append(current.fonts, fp)
						props = len(current.fonts) - 1
					}
					propsDepth = len(stack)
				case props >= 0 && len(stack) == propsDepth+1:
					fp := &current.fonts[props]
					tagStart := bytes.LastIndexByte(data[:offset], '<')
					switch name {
					case "latin":
						child, childDepth = &fp.latin, len(stack)
						child.start = tagStart
					case "ea":
						child, childDepth = &fp.ea, len(stack)
						child.start = tagStart
					case "cs", "sym", "hlinkClick", "hlinkMouseOver", "rtl", "extLst":
						if fp.before == 0 {
							fp.before = tagStart
						}
					}
				}
			}

			switch name {
			case "ser":
				if inStack("plotArea") {
					series++
				}
			case "catAx", "dateAx", "valAx", "serAx":
				if parent() == "plotArea" {
					axisElem, axisPos = name, ""
					if name == "catAx" || name == "dateAx" {
						sawCatAx = true
					}
				}
			case "axPos":
				if p := parent(); p == axisElem {
					axisPos = attrValue(t, "val")
				}
			case "title":
				if current != nil {
					break
				}
				switch parent() {
				case "chart":
					current = &ChartSlot{Key: SlotKey{Kind: SlotTitle}}
				case "catAx", "dateAx", "valAx":
					current = &ChartSlot{
						Key:      SlotKey{Kind: SlotAxisTitle},
						axisElem: axisElem,
						axisPos:  axisPos,
					}
				}
				slotDepth, paragraph = len(stack), 0
			case "tx":
				if current == nil && parent() == "ser" && series > 0 {
					current = &ChartSlot{Key: SlotKey{Kind: SlotSeries, Series: series}}
					slotDepth, paragraph = len(stack), 0
				}
			case "f":
				if current != nil {
					if txt, err := readElementText(decoder); err == nil {
						current.NameRange = strings.TrimSpace(txt)
					}
					stack = stack[:len(stack)-1]
				}
			}

		case xml.EndElement:
			offset := int(decoder.InputOffset())
			switch depth := len(stack); {
			case child != nil && depth == childDepth:
				child.end = offset
				child = nil
			case props >= 0 && depth == propsDepth:
				fp := &current.fonts[props]
				if fp.selfClosing {
					fp.close = offset - 2
				} else {
					fp.close = bytes.LastIndexByte(data[:offset], '<')
				}
				props = -1
			case run >= 0 && depth == runDepth:
				run = -1
			}
			if current != nil && len(stack) == slotDepth {
				if len(current.nodes) > 0 {
					current.Text = slotText(current.nodes)
					result.slots = append(result.slots, *current)
				}
				current = nil
			}
			if len(stack) > 0 {
				if t.Name.Local == axisElem && parent() == "plotArea" {
					axisElem = ""
				}
				stack = stack[:len(stack)-1]
			}
		}
	}

	classifyAxes(result.slots, sawCatAx)
	result.slots = dedupSlots(result.slots)
	return result, nil
}

// readTextNode consumes a text element whose start tag ends at offset and
// returns the span of its content.
func readTextNode(decoder *xml.Decoder, data []byte, offset int, start xml.StartElement) (textNode, error) {
	var node textNode
	if offset >= 2 && string(data[offset-2:offset]) == "/>" {
		tagStart := bytes.LastIndexByte(data[:offset], '<')
		if tagStart < 0 {
			return node, fmt.Errorf("malformed element %s at offset %d", start.Name.Local, offset)
		}
		node.start, node.end = tagStart, offset
		node.selfClosing = true
		node.qname = qualifiedName(data[tagStart+1 : offset-2])
	} else {
		end := bytes.IndexByte(data[offset:], '<')
		if end < 0 {
			return node, fmt.Errorf("unterminated element %s at offset %d", start.Name.Local, offset)
		}
		node.start, node.end = offset, offset+end
	}
	text, err := readElementText(decoder)
	if err != nil {
		return node, err
	}
	node.text = text
	return node, nil
}

// prefixOf returns the namespace prefix, colon included, of the start tag
// ending at offset.
func prefixOf(data []byte, offset int) string {
	tagStart := bytes.LastIndexByte(data[:offset], '<')
	if tagStart < 0 {
		return ""
	}
	name := qualifiedName(data[tagStart+1 : offset])
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i+1]
	}
	return ""
}

// qualifiedName returns the element name of a raw start tag body.
func qualifiedName(tag []byte) string {
	if i := bytes.IndexAny(tag, " \t\r\n/>"); i >= 0 {
		tag = tag[:i]
	}
	return string(tag)
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// slotText returns the displayed text of a slot.
func slotText(nodes []textNode) string {
	if !nodes[0].rich {
		return strings.TrimSpace(nodes[0].text)
	}
	var lines []string
	for _, group := range paragraphs(nodes) {
		var b strings.Builder
		for _, n := range group {
			b.WriteString(n.text)
		}
		lines = append(lines, b.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// paragraphs groups rich text nodes by paragraph, in document order.
func paragraphs(nodes []textNode) [][]textNode {
	var groups [][]textNode
	last := -1
	for _, n := range nodes {
		if !n.rich {
			continue
		}
		if n.paragraph != last {
			groups = append(groups, nil)
			last = n.paragraph
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], n)
	}
	return groups
}

// classifyAxes assigns category/value kinds to axis title slots. Charts
// without a category axis (scatter, bubble) carry two value axes; the
// horizontal one is treated as the category axis.
func classifyAxes(slots []ChartSlot, sawCatAx bool) {
	for i := range slots {
		s := &slots[i]
		if s.Key.Kind != SlotAxisTitle {
			continue
		}
		switch {
		case s.axisElem == "catAx" || s.axisElem == "dateAx":
			s.Key.Axis = address.AxisCategory
		case !sawCatAx && (s.axisPos == "b" || s.axisPos == "t"):
			s.Key.Axis = address.AxisCategory
		default:
			s.Key.Axis = address.AxisValue
		}
	}
}

// dedupSlots keeps the first slot of every key (the primary axis when a
// chart has secondary axes).
func dedupSlots(slots []ChartSlot) []ChartSlot {
	seen := make(map[SlotKey]bool, len(slots))
	out := slots[:0]
	for _, s := range slots {
		if seen[s.Key] {
			continue
		}
		seen[s.Key] = true
		out = append(out, s)
	}
	return out
}

// ScanChartSlots returns the text slots of a chart part.
func ScanChartSlots(data []byte) ([]ChartSlot, error) {
	scan, err := scanChart(data)
	if err != nil {
		return nil, err
	}
	return scan.slots, nil
}

// RewriteChartText replaces the text of the given slots and returns the new
// chart part. Bytes outside the replaced text nodes are preserved, including
// namespace prefixes. Keys without a matching slot yield ErrSlotNotFound and
// leave data unchanged.
func RewriteChartText(data []byte, edits map[SlotKey]string) ([]byte, error) {
	scan, err := scanChart(data)
	if err != nil {
		return nil, err
	}

	bySlot := make(map[SlotKey]ChartSlot, len(scan.slots))
	for _, s := range scan.slots {
		bySlot[s.Key] = s
	}

	var splices []splice
	for key, text := range edits {
		slot, ok := bySlot[key]
		if !ok {
			return nil, fmt.Errorf("%w: %+v", ErrSlotNotFound, key)
		}
		for _, r := range slotReplacements(slot, text) {
			splices = append(splices, splice{start: r.node.start, end: r.node.end, text: r.render()})
		}
	}

	return applySplices(data, splices), nil
}

// splice replaces data[start:end] with text.
type splice struct {
	start, end int
	text       []byte
}

// applySplices returns a copy of data with non-overlapping splices applied.
func applySplices(data []byte, splices []splice) []byte {
	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	out := append([]byte(nil), data...)
	for _, s := range splices {
		out = append(out[:s.start], append(s.text, out[s.end:]...)...)
	}
	return out
}

// ApplyChartFont sets the latin and east asian typeface of a title slot and
// returns the new chart part. Existing typefaces of the slot are replaced;
// runs without run properties receive them. Series slots carry no font and
// yield an error.
func ApplyChartFont(data []byte, key SlotKey, typeface string) ([]byte, error) {
	if key.Kind == SlotSeries {
		return nil, errors.New("series names have no font of their own")
	}
	scan, err := scanChart(data)
	if err != nil {
		return nil, err
	}
	for _, slot := range scan.slots {
		if slot.Key != key {
			continue
		}
		var splices []splice
		for _, fp := range slot.fonts {
			splices = append(splices, fp.splices(typeface)...)
		}
		return applySplices(data, splices), nil
	}
	return nil, fmt.Errorf("%w: %+v", ErrSlotNotFound, key)
}

// splices returns the edits giving fp the typeface.
func (fp fontProps) splices(typeface string) []splice {
	prefix := fp.qname[:strings.IndexByte(fp.qname, ':')+1]
	var face bytes.Buffer
	_ = xml.EscapeText(&face, []byte(typeface))
	fonts := []byte(fmt.Sprintf(`<%slatin typeface="%s"/><%sea typeface="%s"/>`,
		prefix, face.String(), prefix, face.String()))

	switch {
	case fp.bare:
		text := append([]byte("<"+fp.qname+">"), fonts...)
		text = append(text, "</"+fp.qname+">"...)
		return []splice{{start: fp.open, end: fp.open, text: text}}
	case fp.selfClosing:
		text := append([]byte(">"), fonts...)
		text = append(text, "</"+fp.qname+">"...)
		return []splice{{start: fp.close, end: fp.open, text: text}}
	}

	has := func(s span) bool { return s.end > s.start }
	switch {
	case has(fp.latin) && has(fp.ea):
		return []splice{
			{start: fp.latin.start, end: fp.latin.end, text: fonts},
			{start: fp.ea.start, end: fp.ea.end},
		}
	case has(fp.latin):
		return []splice{{start: fp.latin.start, end: fp.latin.end, text: fonts}}
	case has(fp.ea):
		return []splice{{start: fp.ea.start, end: fp.ea.end, text: fonts}}
	case fp.before > 0:
		return []splice{{start: fp.before, end: fp.before, text: fonts}}
	}
	return []splice{{start: fp.close, end: fp.close, text: fonts}}
}

type replacement struct {
	node textNode
	text string
}

func (r replacement) render() []byte {
	var buf bytes.Buffer
	if r.node.selfClosing {
		if r.text == "" {
			buf.WriteString("<" + r.node.qname + "/>")
			return buf.Bytes()
		}
		buf.WriteString("<" + r.node.qname + ">")
	}
	_ = xml.EscapeText(&buf, []byte(r.text))
	if r.node.selfClosing {
		buf.WriteString("</" + r.node.qname + ">")
	}
	return buf.Bytes()
}

// slotReplacements distributes text over the nodes of a slot. Cached values
// take the whole text. Rich text keeps one line per paragraph when the line
// counts match; otherwise everything goes into the first run. Runs that
// receive no text are emptied.
func slotReplacements(slot ChartSlot, text string) []replacement {
	if !slot.nodes[0].rich {
		return []replacement{{node: slot.nodes[0], text: text}}
	}

	groups := paragraphs(slot.nodes)
	lines := strings.Split(text, "\n")
	var out []replacement
	if len(groups) > 1 && len(lines) == len(groups) {
		for i, group := range groups {
			for j, n := range group {
				r := replacement{node: n}
				if j == 0 {
					r.text = lines[i]
				}
				out = append(out, r)
			}
		}
		return out
	}

	for i, n := range slot.nodes {
		if !n.rich {
			continue
		}
		r := replacement{node: n}
		if i == 0 {
			r.text = text
		}
		out = append(out, r)
	}
	return out
}
