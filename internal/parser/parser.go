// Package parser implements the recursive-descent structural parser,
// the anchor/alias/merge resolver, and the version gate (spec
// §4.3-§4.5). It consumes the classified line stream produced by
// internal/scanner and the scalar forms decoded by internal/scalar,
// and produces a comment-annotated node.Node tree.
package parser

import (
	"regexp"
	"strings"

	"github.com/naayfmt/naay/internal/naayerr"
	"github.com/naayfmt/naay/internal/scalar"
	"github.com/naayfmt/naay/internal/scanner"
	"github.com/naayfmt/naay/node"
)

// Parser walks the scanner's line stream using a single anchor table
// that lives for the duration of one parse (spec §4.4, §5).
type Parser struct {
	sc       *scanner.Scanner
	buf      *scanner.Line
	anchors  map[string]*node.Node
	allNames map[string]bool
}

// Parse parses text into a tree and enforces the version gate (spec
// §4.5) using the given preamble key and required version string.
func Parse(text, preambleKey, requiredVersion string) (*node.Node, error) {
	allNames, err := scanAllAnchorNames(text)
	if err != nil {
		return nil, err
	}
	sc, err := scanner.New(text)
	if err != nil {
		return nil, err
	}
	p := &Parser{sc: sc, anchors: make(map[string]*node.Node), allNames: allNames}

	root, trailing, err := p.parseValueBlock(-1)
	if err != nil {
		return nil, err
	}
	if line, err := p.peek(); err != nil {
		return nil, err
	} else if line != nil {
		return nil, naayerr.New(naayerr.KindIndentMix, posOf(line), "unexpected content after root document")
	}
	root.TrailingComments = trailing

	if err := checkVersion(root, preambleKey, requiredVersion); err != nil {
		return nil, err
	}
	return root, nil
}

func posOf(l *scanner.Line) naayerr.Position {
	return naayerr.Position{Line: l.LineNo, Column: l.Indent + 1}
}

// --- line buffering -------------------------------------------------

func (p *Parser) peek() (*scanner.Line, error) {
	for p.buf == nil {
		l, err := p.sc.Next()
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, nil
		}
		if l.Kind == scanner.KindBlank {
			continue
		}
		p.buf = l
	}
	return p.buf, nil
}

func (p *Parser) consume() *scanner.Line {
	l := p.buf
	p.buf = nil
	return l
}

// collectComments gathers every consecutive full-line comment
// starting at the cursor, stopping at the next content line or EOF.
func (p *Parser) collectComments() ([]string, error) {
	var out []string
	for {
		l, err := p.peek()
		if err != nil {
			return out, err
		}
		if l == nil || l.Kind != scanner.KindFullLineComment {
			return out, nil
		}
		p.consume()
		out = append(out, l.Payload)
	}
}

// --- block dispatch ---------------------------------------------------

// parseValueBlock parses the indented block that follows a value slot
// (after "key:" or "- " with nothing inline), or the whole document
// when parentIndent is -1. It returns the parsed node (Str("") if no
// block follows) and any comments collected that belong to the
// caller, not to this block (spec §4.3's comment-bubbling rule).
func (p *Parser) parseValueBlock(parentIndent int) (*node.Node, []string, error) {
	pending, err := p.collectComments()
	if err != nil {
		return nil, nil, err
	}
	line, err := p.peek()
	if err != nil {
		return nil, nil, err
	}
	if line == nil || line.Indent <= parentIndent {
		return node.Str(""), pending, nil
	}
	collectionIndent := line.Indent
	if isSequenceLine(line) {
		return p.parseSequence(collectionIndent, pending)
	}
	return p.parseMapping(collectionIndent, pending)
}

func isSequenceLine(l *scanner.Line) bool {
	return l.Payload == "-" || strings.HasPrefix(l.Payload, "- ")
}

// --- mapping ----------------------------------------------------------

type rawEntry struct {
	key     string
	value   *node.Node
	isMerge bool
}

func (p *Parser) parseMapping(collectionIndent int, pending []string) (*node.Node, []string, error) {
	var entries []rawEntry
	seen := make(map[string]bool)

	for {
		line, err := p.peek()
		if err != nil {
			return nil, nil, err
		}
		if line == nil {
			return p.finishMapping(entries, pending)
		}
		if line.Indent < collectionIndent {
			return p.finishMapping(entries, pending)
		}
		if line.Indent > collectionIndent {
			return nil, nil, naayerr.New(naayerr.KindIndentMix, posOf(line), "sibling mapping entry at inconsistent indent")
		}

		p.consume()
		key, rest, ok := splitKey(line.Payload)
		if !ok {
			return nil, nil, naayerr.New(naayerr.KindUnexpectedChar, posOf(line), "expected \"key:\" mapping entry")
		}
		if seen[key] {
			return nil, nil, naayerr.New(naayerr.KindDuplicateKey, posOf(line), "duplicate key "+key)
		}
		seen[key] = true

		valNode, bubbled, err := p.parseValue(collectionIndent, rest, posOf(line))
		if err != nil {
			return nil, nil, err
		}
		valNode.LeadingComments = pending
		if line.HasTrailing {
			valNode.TrailingComment = line.Trailing
		}
		entries = append(entries, rawEntry{key: key, value: valNode, isMerge: key == "<<"})

		pending = bubbled
		if pending == nil {
			pending, err = p.collectComments()
			if err != nil {
				return nil, nil, err
			}
		}
	}
}

// finishMapping expands merge keys (spec §4.3, §4.4) and returns the
// assembled map plus the comments that bubble up to the caller.
func (p *Parser) finishMapping(entries []rawEntry, bubbled []string) (*node.Node, []string, error) {
	result := node.Map()
	for _, e := range entries {
		if !e.isMerge {
			result.Value.MapSet(e.key, e.value)
			continue
		}
		sources, err := mergeSources(e.value)
		if err != nil {
			return nil, nil, err
		}
		for _, src := range sources {
			for _, pair := range src.Value.Map {
				if _, exists := result.Value.MapGet(pair.Key); !exists {
					result.Value.MapSet(pair.Key, pair.Value)
				}
			}
		}
	}
	return result, bubbled, nil
}

// mergeSources resolves the value of a "<<" entry into the ordered
// list of source mappings to merge, left to right (spec §4.3).
func mergeSources(v *node.Node) ([]*node.Node, error) {
	switch v.Value.Kind {
	case node.KindMap:
		return []*node.Node{v}, nil
	case node.KindSeq:
		for _, item := range v.Value.Seq {
			if item.Value.Kind != node.KindMap {
				return nil, naayerr.New(naayerr.KindMergeTargetNotMap, naayerr.Position{}, "merge sequence item is not a mapping")
			}
		}
		return v.Value.Seq, nil
	default:
		return nil, naayerr.New(naayerr.KindMergeTargetNotMap, naayerr.Position{}, "merge key value is not a mapping or sequence of mappings")
	}
}

// splitKey splits a mapping-entry payload into its key and the
// remaining text after the separating colon (spec §4.3).
func splitKey(payload string) (key, rest string, ok bool) {
	if payload == "" {
		return "", "", false
	}
	if payload[0] == '"' || payload[0] == '\'' {
		end := findQuoteEnd(payload, 0)
		if end < 0 {
			return "", "", false
		}
		decoded, err := scalar.DecodeQuoted(payload[:end+1], naayerr.Position{})
		if err != nil {
			return "", "", false
		}
		rest2 := payload[end+1:]
		i := 0
		for i < len(rest2) && rest2[i] == ' ' {
			i++
		}
		if i >= len(rest2) || rest2[i] != ':' {
			return "", "", false
		}
		if i+1 < len(rest2) && rest2[i+1] != ' ' {
			return "", "", false
		}
		return decoded, strings.TrimLeft(rest2[i+1:], " "), true
	}

	for i := 0; i < len(payload); i++ {
		if payload[i] == ':' && (i+1 >= len(payload) || payload[i+1] == ' ') {
			return strings.TrimRight(payload[:i], " \t"), strings.TrimLeft(payload[i+1:], " "), true
		}
	}
	return "", "", false
}

// findQuoteEnd returns the index of the closing quote matching
// payload[start], or -1 if unterminated.
func findQuoteEnd(payload string, start int) int {
	q := payload[start]
	i := start + 1
	for i < len(payload) {
		if payload[i] == q {
			if q == '\'' && i+1 < len(payload) && payload[i+1] == '\'' {
				i += 2
				continue
			}
			if q == '"' {
				// count preceding backslashes to detect an escaped quote
				bs := 0
				for j := i - 1; j >= start+1 && payload[j] == '\\'; j-- {
					bs++
				}
				if bs%2 == 1 {
					i++
					continue
				}
			}
			return i
		}
		if q == '"' && payload[i] == '\\' && i+1 < len(payload) {
			i += 2
			continue
		}
		i++
	}
	return -1
}

// --- sequence -----------------------------------------------------------

func (p *Parser) parseSequence(collectionIndent int, pending []string) (*node.Node, []string, error) {
	items := make([]*node.Node, 0)

	for {
		line, err := p.peek()
		if err != nil {
			return nil, nil, err
		}
		if line == nil || line.Indent < collectionIndent {
			return node.Seq(items...), pending, nil
		}
		if line.Indent > collectionIndent {
			return nil, nil, naayerr.New(naayerr.KindIndentMix, posOf(line), "sibling sequence item at inconsistent indent")
		}
		if !isSequenceLine(line) {
			return nil, nil, naayerr.New(naayerr.KindUnexpectedChar, posOf(line), "expected sequence item \"- \"")
		}

		p.consume()
		itemNode, bubbled, err := p.parseSequenceItem(line)
		if err != nil {
			return nil, nil, err
		}
		itemNode.LeadingComments = pending
		if line.HasTrailing {
			itemNode.TrailingComment = line.Trailing
		}
		items = append(items, itemNode)

		pending = bubbled
		if pending == nil {
			pending, err = p.collectComments()
			if err != nil {
				return nil, nil, err
			}
		}
	}
}

func (p *Parser) parseSequenceItem(line *scanner.Line) (*node.Node, []string, error) {
	itemIndent := line.Indent
	var rest string
	if len(line.Payload) > 1 {
		rest = strings.TrimLeft(line.Payload[1:], " ")
	}

	if rest == "" {
		return p.parseValueBlock(itemIndent)
	}

	if key, valRest, ok := splitKey(rest); ok && !isSpecialInlineToken(rest) {
		contentIndent := itemIndent + 2
		valNode, bubbled, err := p.parseValue(contentIndent, valRest, posOf(line))
		if err != nil {
			return nil, nil, err
		}
		if nl, err := p.peek(); err == nil && nl != nil && nl.Kind == scanner.KindContent && nl.Indent == contentIndent {
			if _, _, ok2 := splitKey(nl.Payload); ok2 {
				return nil, nil, naayerr.New(naayerr.KindFlowMappingMulti, posOf(nl), "multi-key inline mapping after \"- key:\" is not supported")
			}
		} else if err != nil {
			return nil, nil, err
		}
		m := node.Map()
		m.Value.MapSet(key, valNode)
		return m, bubbled, nil
	}

	return p.parseValue(itemIndent, rest, posOf(line))
}

// isSpecialInlineToken reports whether rest begins with a token that
// is never a mapping key (anchor, alias, pipe, flow marker), so
// splitKey's colon search should not be trusted even if it happens to
// find one inside such a token.
func isSpecialInlineToken(rest string) bool {
	if rest == "" {
		return false
	}
	switch rest[0] {
	case '&', '*', '|', '>', '[', '{':
		return true
	}
	return false
}

// --- scalar / anchor / alias value dispatch -----------------------------

var anchorNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func (p *Parser) parseValue(parentIndent int, rest string, pos naayerr.Position) (*node.Node, []string, error) {
	switch {
	case rest == "":
		return p.parseValueBlock(parentIndent)
	case rest == "[]":
		return node.Seq(), nil, nil
	case rest == "{}":
		return node.Map(), nil, nil
	case strings.HasPrefix(rest, "["):
		return nil, nil, naayerr.New(naayerr.KindFlowUnsupported, pos, "inline sequence form is not supported")
	case strings.HasPrefix(rest, "{"):
		return nil, nil, naayerr.New(naayerr.KindFlowUnsupported, pos, "inline mapping form is not supported")
	case strings.HasPrefix(rest, ">"):
		return nil, nil, naayerr.New(naayerr.KindFoldedUnsupported, pos, "folded scalar is not supported")
	case strings.HasPrefix(rest, "|"):
		return p.parsePipeLiteral(parentIndent, rest, pos)
	case strings.HasPrefix(rest, "&"):
		return p.parseAnchoredValue(parentIndent, rest, pos)
	case strings.HasPrefix(rest, "*"):
		return p.parseAlias(rest, pos)
	case rest[0] == '"' || rest[0] == '\'':
		s, err := scalar.DecodeQuoted(rest, pos)
		if err != nil {
			return nil, nil, err
		}
		return node.Str(s), nil, nil
	case strings.ContainsRune("-!%@`]}", rune(rest[0])):
		return nil, nil, naayerr.New(naayerr.KindUnexpectedChar, pos, "unquoted scalar cannot begin with this character")
	default:
		return node.Str(rest), nil, nil
	}
}

func (p *Parser) parseAnchoredValue(parentIndent int, rest string, pos naayerr.Position) (*node.Node, []string, error) {
	parts := strings.SplitN(rest[1:], " ", 2)
	name := parts[0]
	if name == "" || !anchorNameRe.MatchString(name) {
		return nil, nil, naayerr.New(naayerr.KindUnexpectedChar, pos, "invalid anchor name")
	}
	trailing := ""
	if len(parts) > 1 {
		trailing = strings.TrimSpace(parts[1])
	}
	// An anchored empty collection round-trips through its inline form
	// (dumper.go writes "&name []" / "&name {}"); only non-empty
	// trailing text is a scalar and thus rejected below.
	if trailing == "[]" || trailing == "{}" {
		val := node.Seq()
		if trailing == "{}" {
			val = node.Map()
		}
		val.AnchorName = name
		p.anchors[name] = val
		return val, nil, nil
	}
	if trailing != "" {
		return nil, nil, naayerr.New(naayerr.KindAnchorOnScalar, pos, "anchors are not permitted on scalar values")
	}
	val, bubbled, err := p.parseValueBlock(parentIndent)
	if err != nil {
		return nil, nil, err
	}
	if val.Value.Kind == node.KindStr {
		return nil, nil, naayerr.New(naayerr.KindAnchorOnScalar, pos, "anchors are not permitted on scalar values")
	}
	val.AnchorName = name
	p.anchors[name] = val
	return val, bubbled, nil
}

func (p *Parser) parseAlias(rest string, pos naayerr.Position) (*node.Node, []string, error) {
	name := rest[1:]
	if !anchorNameRe.MatchString(name) {
		return nil, nil, naayerr.New(naayerr.KindUnexpectedChar, pos, "invalid alias name")
	}
	target, ok := p.anchors[name]
	if !ok {
		if p.allNames[name] {
			return nil, nil, naayerr.New(naayerr.KindAliasForward, pos, "alias \"*"+name+"\" refers to an anchor declared later")
		}
		return nil, nil, naayerr.New(naayerr.KindAliasUnresolved, pos, "alias \"*"+name+"\" has no matching anchor")
	}
	return &node.Node{Value: snapshotValue(target.Value), AliasOf: name}, nil, nil
}

// snapshotValue deep-copies a Value so that alias consumers never
// share node identity with the anchor's tree (spec §9).
func snapshotValue(v node.Value) node.Value {
	switch v.Kind {
	case node.KindStr:
		return node.Value{Kind: node.KindStr, Str: v.Str}
	case node.KindSeq:
		items := make([]*node.Node, len(v.Seq))
		for i, it := range v.Seq {
			items[i] = &node.Node{Value: snapshotValue(it.Value)}
		}
		return node.Value{Kind: node.KindSeq, Seq: items}
	default:
		pairs := make([]node.Pair, len(v.Map))
		for i, pr := range v.Map {
			pairs[i] = node.Pair{Key: pr.Key, Value: &node.Node{Value: snapshotValue(pr.Value.Value)}}
		}
		return node.Value{Kind: node.KindMap, Map: pairs}
	}
}

func (p *Parser) parsePipeLiteral(parentIndent int, rest string, pos naayerr.Position) (*node.Node, []string, error) {
	chomp := node.ChompClip
	switch rest {
	case "|":
		chomp = node.ChompClip
	case "|-":
		chomp = node.ChompStrip
	case "|+":
		chomp = node.ChompKeep
	default:
		return nil, nil, naayerr.New(naayerr.KindUnexpectedChar, pos, "invalid block literal indicator")
	}

	var bodyLines []string
	for {
		l, err := p.sc.NextBlockBodyLine()
		if err != nil {
			return nil, nil, err
		}
		if l == nil {
			break
		}
		if l.Raw == "" {
			bodyLines = append(bodyLines, "")
			continue
		}
		if l.Indent <= parentIndent {
			p.sc.PushBack()
			break
		}
		bodyLines = append(bodyLines, l.Raw)
	}

	value, err := scalar.DecodePipeBody(bodyLines, parentIndent, chomp, pos)
	if err != nil {
		return nil, nil, err
	}
	return &node.Node{Value: node.Value{Kind: node.KindStr, Str: value}, IsBlockLiteral: true, Chomp: chomp}, nil, nil
}

// scanAllAnchorNames pre-scans the document for every anchor name
// declared anywhere, so the alias resolver can distinguish a genuinely
// unresolved alias from a forward reference (spec §4.4, §7). Lines the
// scanner rejects are skipped here: the main pass reports real errors,
// and block literal body lines may carry indentation Next would refuse.
func scanAllAnchorNames(text string) (map[string]bool, error) {
	sc, err := scanner.New(text)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool)
	re := regexp.MustCompile(`&([A-Za-z0-9_-]+)`)
	for {
		l, err := sc.Next()
		if err != nil {
			continue
		}
		if l == nil {
			break
		}
		if l.Kind == scanner.KindContent {
			for _, m := range re.FindAllStringSubmatch(l.Payload, -1) {
				names[m[1]] = true
			}
		}
	}
	return names, nil
}

// checkVersion enforces the version gate (spec §4.5).
func checkVersion(root *node.Node, preambleKey, requiredVersion string) error {
	if root.Value.Kind != node.KindMap || len(root.Value.Map) == 0 {
		return naayerr.New(naayerr.KindVersionMissing, naayerr.Position{Line: 1, Column: 1}, "root document is not a mapping with a preamble entry")
	}
	first := root.Value.Map[0]
	if first.Key != preambleKey {
		return naayerr.New(naayerr.KindVersionMissing, naayerr.Position{Line: 1, Column: 1}, "first root key is not "+preambleKey)
	}
	if first.Value.Value.Kind != node.KindStr {
		return naayerr.New(naayerr.KindVersionMismatch, naayerr.Position{Line: 1, Column: 1}, "preamble value is not a string")
	}
	if first.Value.Value.Str != requiredVersion {
		return naayerr.New(naayerr.KindVersionMismatch, naayerr.Position{Line: 1, Column: 1}, "preamble version does not match "+requiredVersion)
	}
	return nil
}
