package therapy

import (
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// Reference dictionary and output column names.
const (
	ReferenceNameColumn = "therapy"
	ReferenceCodeColumn = "ncitId"

	TherapyColumn     = "therapy"
	TherapiesColumn   = "therapies"
	ComboIDColumn     = "ncit_combo_id"
	TokenIDsColumn    = "ncit_token_ids"
	ResolvedIDsColumn = "ncit_ids"
)

// NewMatcherFromTable builds a Matcher from a reference table. Both columns
// are required and checked before any row is indexed.
func NewMatcherFromTable(t *domain.Table, nameCol, codeCol string) (*Matcher, error) {
	if nameCol == "" {
		nameCol = ReferenceNameColumn
	}
	if codeCol == "" {
		codeCol = ReferenceCodeColumn
	}
	if err := t.RequireColumns(nameCol, codeCol); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(t.Rows))
	for _, r := range t.Rows {
		entries = append(entries, Entry{Name: r[nameCol], Code: r[codeCol]})
	}
	return NewMatcher(entries), nil
}

// MapTable resolves the therapy column of t in place and appends the
// ncit_combo_id, ncit_token_ids and ncit_ids columns. A table carrying
// "therapies" instead of "therapy" has that column renamed first.
func MapTable(t *domain.Table, m *Matcher) error {
	if !t.HasColumn(TherapyColumn) {
		if !t.HasColumn(TherapiesColumn) {
			return domain.ErrMissingColumn(TherapyColumn, t.Source)
		}
		t.RenameColumn(TherapiesColumn, TherapyColumn)
	}
	t.AddColumn(ComboIDColumn)
	t.AddColumn(TokenIDsColumn)
	t.AddColumn(ResolvedIDsColumn)

	for _, r := range t.Rows {
		res := m.Match(r[TherapyColumn])
		resolved, _ := res.Resolved()
		r[ComboIDColumn] = res.ComboID()
		r[TokenIDsColumn] = res.TokenIDs()
		r[ResolvedIDsColumn] = resolved
	}
	return nil
}

// MapRecords resolves the therapy of every joined record in place and
// returns how many resolved.
func MapRecords(recs []domain.JoinedRecord, m *Matcher) int {
	n := 0
	for i := range recs {
		res := m.Match(recs[i].Therapy)
		resolved, ok := res.Resolved()
		recs[i].NCITComboID = res.ComboID()
		recs[i].NCITTokenIDs = res.TokenIDs()
		recs[i].NCITIDs = resolved
		if ok {
			n++
		}
	}
	return n
}
