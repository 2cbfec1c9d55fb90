package scenario

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/martin-neuhaeusser/smartace/internal/config"
)

var parser = buildParser()

func buildParser() *participle.Parser[Program] {
	p, err := participle.Build[Program](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(errors.Wrap(err, "building scenario parser"))
	}
	return p
}

// ParseString parses the inline scenario language and folds it into a
// config.Scenario, the same shape the YAML loader produces, so either
// source can drive emit.New interchangeably.
func ParseString(name, source string) (*config.Scenario, error) {
	prog, err := parser.ParseString(name, source)
	if err != nil {
		return nil, errors.Wrap(err, "parsing scenario")
	}

	var s config.Scenario
	for _, stmt := range prog.Statements {
		switch {
		case stmt.Model != nil:
			s.Model = stmt.Model.Names
		case stmt.Lockstep != nil:
			s.UseLockstepTime = stmt.Lockstep.On
		case stmt.Invariant != nil:
			s.InvariantMode = config.InvariantMode(stmt.Invariant.Mode)
		case stmt.Output != nil:
			s.Output = stmt.Output.Path
		}
	}
	return &s, nil
}
