package domain

// Snapshot is the full replacement unit for sync: the complete set of the
// five collections at a point in time. There is no partial or delta sync;
// every push and pull moves a whole Snapshot.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	Tags         []Tag         `json:"tags"`
	Settings     Settings      `json:"settings"`
	Todos        []Todo        `json:"todos"`
}

// Clone returns a deep copy so a snapshot handed across the sync boundary
// can never alias the live store.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Transactions: make([]Transaction, len(s.Transactions)),
		Categories:   append([]Category{}, s.Categories...),
		Tags:         append([]Tag{}, s.Tags...),
		Settings:     s.Settings,
		Todos:        append([]Todo{}, s.Todos...),
	}
	for i, txn := range s.Transactions {
		txn.TagIDs = append([]string{}, txn.TagIDs...)
		out.Transactions[i] = txn
	}
	return out
}

// SnapshotImport is the bulk-import payload: each non-nil collection
// replaces the matching store collection wholesale, nil collections are left
// untouched. Pointers distinguish "absent" from "present but empty".
type SnapshotImport struct {
	Transactions *[]Transaction `json:"transactions,omitempty"`
	Categories   *[]Category    `json:"categories,omitempty"`
	Tags         *[]Tag         `json:"tags,omitempty"`
	Settings     *Settings      `json:"settings,omitempty"`
	Todos        *[]Todo        `json:"todos,omitempty"`
}

// ChangeSet names the collections a mutation touched, so the sync layer
// knows a push is due and what changed.
type ChangeSet struct {
	Transactions bool
	Categories   bool
	Tags         bool
	Settings     bool
	Todos        bool
}

// Any reports whether at least one collection changed.
func (c ChangeSet) Any() bool {
	return c.Transactions || c.Categories || c.Tags || c.Settings || c.Todos
}

// Merge folds another change set into this one.
func (c ChangeSet) Merge(other ChangeSet) ChangeSet {
	return ChangeSet{
		Transactions: c.Transactions || other.Transactions,
		Categories:   c.Categories || other.Categories,
		Tags:         c.Tags || other.Tags,
		Settings:     c.Settings || other.Settings,
		Todos:        c.Todos || other.Todos,
	}
}
