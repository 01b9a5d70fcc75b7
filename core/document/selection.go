// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package document

import "unicode/utf8"

// Selection is a half-open range [From, To) of rune offsets into [Document.Text].
type Selection struct {
	From int
	To   int
}

// Empty reports whether the selection covers no characters.
func (s Selection) Empty() bool {
	return s.From >= s.To
}

// clamp orders the ends and limits them to [0, n].
func (s Selection) clamp(n int) Selection {
	if s.From > s.To {
		s.From, s.To = s.To, s.From
	}

	s.From = min(max(s.From, 0), n)
	s.To = min(max(s.To, 0), n)

	return s
}

// HasMark reports whether every character in sel carries mark.
// Hard breaks are not characters. An empty selection has no marks.
func (d *Document) HasMark(mark Mark, sel Selection) bool {
	sel = sel.clamp(d.Len())
	if sel.Empty() {
		return false
	}

	covered := true

	d.eachRun(sel, func(run *Run) {
		if !run.Break && !run.Marks.Has(mark) {
			covered = false
		}
	})

	return covered
}

// AddMark sets mark on every character in sel.
func (d *Document) AddMark(mark Mark, sel Selection) {
	d.apply(sel, func(run *Run) { run.Marks |= mark })
}

// RemoveMark clears mark from every character in sel.
func (d *Document) RemoveMark(mark Mark, sel Selection) {
	d.apply(sel, func(run *Run) { run.Marks &^= mark })
}

// ToggleMark removes mark from sel if every character there already carries
// it and adds it to the whole range otherwise. It returns false, leaving the
// document untouched, when the clamped selection is empty.
func (d *Document) ToggleMark(mark Mark, sel Selection) bool {
	sel = sel.clamp(d.Len())
	if sel.Empty() {
		return false
	}

	if d.HasMark(mark, sel) {
		d.RemoveMark(mark, sel)
	} else {
		d.AddMark(mark, sel)
	}

	return true
}

func (d *Document) apply(sel Selection, fn func(run *Run)) {
	sel = sel.clamp(d.Len())
	if sel.Empty() {
		return
	}

	d.split(sel)
	d.eachRun(sel, fn)
	d.normalize()
}

// split cuts runs so that sel starts and ends on run boundaries.
func (d *Document) split(sel Selection) {
	offset := 0

	for bi := range d.Blocks {
		block := &d.Blocks[bi]
		runs := make([]Run, 0, len(block.Runs)+2)

		for _, run := range block.Runs {
			start := offset
			offset += utf8.RuneCountInString(run.Text)

			runs = append(runs, cutRun(run, sel.From-start, sel.To-start)...)
		}

		block.Runs = runs
	}
}

// cutRun splits run at the rune positions a and b when they fall inside it.
func cutRun(run Run, a, b int) []Run {
	runes := []rune(run.Text)

	cuts := make([]int, 0, 2)

	for _, at := range []int{a, b} {
		if at > 0 && at < len(runes) {
			cuts = append(cuts, at)
		}
	}

	if len(cuts) == 0 {
		return []Run{run}
	}

	pieces := make([]Run, 0, len(cuts)+1)
	prev := 0

	for _, at := range cuts {
		if at == prev {
			continue
		}

		pieces = append(pieces, Run{Text: string(runes[prev:at]), Marks: run.Marks})
		prev = at
	}

	return append(pieces, Run{Text: string(runes[prev:]), Marks: run.Marks})
}

// eachRun calls fn for every run overlapping sel.
func (d *Document) eachRun(sel Selection, fn func(run *Run)) {
	offset := 0

	for bi := range d.Blocks {
		for ri := range d.Blocks[bi].Runs {
			run := &d.Blocks[bi].Runs[ri]

			start := offset
			offset += utf8.RuneCountInString(run.Text)

			if start < sel.To && offset > sel.From {
				fn(run)
			}
		}
	}
}
