package asp

import (
	"strconv"
	"strings"
)

// parseIntLiteral parses the token text of an integer literal into its value.
// It accepts a "0x"/"0X" hex prefix (toolchain flag masks, version constants)
// and treats "_" anywhere among the digits as a purely visual separator
// (e.g. 1_000_000), matching what the lexer's consumeInteger tokenises as a
// single Int token. Deliberately does not follow strconv.ParseInt's base-0
// convention of treating a bare leading "0" as octal, since that would
// silently change the value of any existing zero-padded decimal literal.
func parseIntLiteral(s string) (int, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = strings.ReplaceAll(s, "_", "")
	var i int64
	var err error
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		i, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		i, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		i = -i
	}
	return int(i), nil
}

// FindTarget returns the top-level call in a build script that corresponds to a target
// of the given name (or nil if one does not exist).
func FindTarget(statements []*Statement, name string) *Statement {
	for _, statement := range statements {
		ident := statement.Ident
		if ident == nil || ident.Action == nil || ident.Action.Call == nil {
			continue
		}
		for _, arg := range ident.Action.Call.Arguments {
			if arg.Name == "name" && arg.Value.Val != nil && arg.Value.Val.String != "" &&
				strings.Trim(arg.Value.Val.String, `"`) == name {
				return statement
			}
		}
	}
	return nil
}

// NextStatement finds the statement that follows the given one.
// This is often useful to find the extent of a statement in source code.
// It will return nil if there is not one following it.
func NextStatement(statements []*Statement, statement *Statement) *Statement {
	for i, s := range statements {
		if s == statement && i < len(statements)-1 {
			return statements[i+1]
		}
	}
	return nil
}

// FindArgument returns the call argument with the given name on an ident statement's call,
// or nil if the statement is not a call or has no such argument.
func FindArgument(statement *Statement, name string) *CallArgument {
	if statement.Ident == nil || statement.Ident.Action == nil || statement.Ident.Action.Call == nil {
		return nil
	}
	for i, arg := range statement.Ident.Action.Call.Arguments {
		if arg.Name == name {
			return &statement.Ident.Action.Call.Arguments[i]
		}
	}
	return nil
}

// GetExtents returns the "extents" of a statement, i.e. the lines that it covers in source.
// The caller must pass a value for the maximum extent of the file; we can't detect it here
// because the AST only contains positions for the beginning of the statements.
func GetExtents(statements []*Statement, statement *Statement, max int) (int, int) {
	next := NextStatement(statements, statement)
	if next == nil {
		// Assume it reaches to the end of the file
		return statement.Pos.Line, max
	}
	return statement.Pos.Line, next.Pos.Line - 1
}
