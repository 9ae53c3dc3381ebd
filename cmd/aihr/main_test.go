package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProcessArgsFlagsAfterPath(t *testing.T) {
	pa, err := parseProcessArgs("analyze", []string{"resume.pdf", "--output", "out.txt"})

	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", pa.file)
	assert.Equal(t, "out.txt", pa.output)
	assert.Empty(t, pa.text)
}

func TestParseProcessArgsFlagsBeforePath(t *testing.T) {
	pa, err := parseProcessArgs("optimize", []string{"--output", "out.txt", "resume.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", pa.file)
	assert.Equal(t, "out.txt", pa.output)
}

func TestParseProcessArgsTextOnly(t *testing.T) {
	pa, err := parseProcessArgs("analyze", []string{"--text", "Jane Doe"})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", pa.text)
	assert.Empty(t, pa.file)
}

func TestParseProcessArgsRejectsExtraPositional(t *testing.T) {
	_, err := parseProcessArgs("analyze", []string{"a.pdf", "b.pdf"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.pdf")
}

func TestParseProcessArgsPathBetweenFlags(t *testing.T) {
	pa, err := parseProcessArgs("analyze", []string{"--text", "", "resume.pdf", "--output", "out.txt"})

	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", pa.file)
	assert.Equal(t, "out.txt", pa.output)
}
