package orm

// AliasSpec is one selected column and the key it is exposed under.
type AliasSpec struct {
	SourcePath string // "post.id"
	Alias      string // "IdOfPost"; empty to keep the property name
}

// AliasTable records selections in declaration order. Re-declaring a
// path adds a second selection; nothing is de-duplicated.
type AliasTable struct {
	specs []AliasSpec
}

// Define appends a selection of sourcePath exposed as alias.
func (t *AliasTable) Define(sourcePath, alias string) {
	t.specs = append(t.specs, AliasSpec{SourcePath: sourcePath, Alias: alias})
}

// Resolve returns a copy of the selections in declaration order.
func (t *AliasTable) Resolve() []AliasSpec {
	return append([]AliasSpec(nil), t.specs...)
}

// Len reports the number of selections.
func (t *AliasTable) Len() int { return len(t.specs) }

// Level is one node of a hydration plan: the selections of a single query
// alias, plus the levels of the relations joined beneath it.
type Level struct {
	Alias   string  // query alias, e.g. "post"
	Key     string  // property this level is nested under; empty for the root
	Entries []Entry // in declaration order
}

// Entry is either a column (Label set) or a nested relation (Level set).
type Entry struct {
	Key   string // output key
	Label string // result column label
	Level *Level
}

func (lv *Level) addColumn(key, label string) {
	lv.Entries = append(lv.Entries, Entry{Key: key, Label: label})
}

func (lv *Level) addChild(child *Level) {
	lv.Entries = append(lv.Entries, Entry{Key: child.Key, Level: child})
}
