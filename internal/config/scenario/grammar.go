// Package scenario implements the inline scenario language SPEC_FULL.md
// §10 calls for: a handful of statements supplementing the YAML config
// form for quick command-line runs, e.g.
//
//	model Wallet, Proxy;
//	lockstep on;
//	invariant universal;
//
// Grounded on the teacher's grammar/grammar.go and grammar/lexer.go: the
// same participle struct-tag style (one Go struct per production, fields
// tagged with the literal grammar fragment they parse) and the same
// lexer-rule-table construction, reused here for a much smaller grammar.
// This is a configuration-language parser, not a front end for the source
// contract language itself.
package scenario

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the scenario language: identifiers, the boolean words
// on/off, and the handful of punctuation marks the grammar below uses.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Punctuation", Pattern: `[,;]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})

// Program is a sequence of scenario statements.
type Program struct {
	Statements []*Statement `parser:"@@*"`
}

// Statement is one of the scenario language's four statement kinds.
type Statement struct {
	Model     *ModelStmt     `parser:"  @@"`
	Lockstep  *LockstepStmt  `parser:"| @@"`
	Invariant *InvariantStmt `parser:"| @@"`
	Output    *OutputStmt    `parser:"| @@"`
}

// ModelStmt names the deployed top-level contracts, in deployment order
// (spec.md §6: "model = ordered list of contract names -- roots for the
// model-driven build").
type ModelStmt struct {
	Names []string `parser:"\"model\" @Ident { \",\" @Ident } \";\""`
}

// LockstepStmt sets use_lockstep_time.
type LockstepStmt struct {
	On bool `parser:"\"lockstep\" ( @\"on\" | \"off\" ) \";\""`
}

// InvariantStmt sets invariant_mode.
type InvariantStmt struct {
	Mode string `parser:"\"invariant\" @(\"none\" | \"existential\" | \"universal\") \";\""`
}

// OutputStmt names the file the emitted stream is written to.
type OutputStmt struct {
	Path string `parser:"\"output\" @Ident \";\""`
}
