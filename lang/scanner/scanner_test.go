package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/scanner"
	"github.com/mhr3/slo/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s scanner.Scanner
	s.Init([]byte(src))
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := scanAll(t, "var x = 1 + 2 * 3; // comment\n# also comment\nif (x >= 1) { println(x); }")
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
	require.Contains(t, kinds(toks), token.VAR)
	require.Contains(t, kinds(toks), token.IF)
	require.Contains(t, kinds(toks), token.GE)
	require.Contains(t, kinds(toks), token.NUMBER)
}

func TestScanCompoundOperators(t *testing.T) {
	toks := scanAll(t, "x += 1 -- y ** 2 == 3 != 4")
	ks := kinds(toks)
	require.Contains(t, ks, token.PLUS_EQ)
	require.Contains(t, ks, token.MINUS_MINUS)
	require.Contains(t, ks, token.STAR_STAR)
	require.Contains(t, ks, token.EQ_EQ)
	require.Contains(t, ks, token.BANG_EQ)
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "unterminated")
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "1 1.5 .5")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "1.5", toks[1].Lexeme)
	require.Equal(t, token.NUMBER, toks[2].Kind)
	require.Equal(t, ".5", toks[2].Lexeme)
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll(t, "var x = 1;\nvar y = 2;")
	var line2 bool
	for _, tk := range toks {
		if tk.Kind == token.VAR && tk.Line == 2 {
			line2 = true
		}
	}
	require.True(t, line2, "expected a VAR token on line 2")
}

func TestScanIllegalCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}
