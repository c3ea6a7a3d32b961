package toktab

// Keywords adapts the package-level spelling tables to deftab.KeywordChecker
// without deftab needing to import toktab's Tok/Stmt types.
type Keywords struct{}

func (Keywords) IsTokenSpelling(name string) bool           { return IsTokenSpelling(name) }
func (Keywords) IsStatementSpelling(name string) bool        { return IsStatementSpelling(name) }
func (Keywords) IsTokenSpellingWithDollar(name string) bool { return IsTokenSpellingWithDollar(name) }
