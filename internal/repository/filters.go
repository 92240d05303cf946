package repository

import "strings"

// likeEscaper neutralises LIKE wildcards in user input; queries pair it with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern for LOWER(col) LIKE $n ESCAPE '\'.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
