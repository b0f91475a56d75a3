// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfetch/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crispr.yaml")
	opts := SearchOptions{
		Sources:    []types.Source{types.SourcePubMed, types.SourceArxiv},
		MaxResults: 5,
		StartYear:  2015,
	}
	rep := Report{
		Papers: []types.Paper{
			{Title: "CRISPR A", PMID: "1", DOI: "10.1/a", Authors: []string{"A B"}, Source: types.SourcePubMed},
			{Title: "CRISPR B", ArxivID: "2301.00001", PDFURL: types.ArxivPDFURL("2301.00001"), Source: types.SourceArxiv},
		},
		Failures:          map[types.Source]error{types.SourceBiorxiv: errors.New("down")},
		DuplicatesRemoved: 1,
	}

	require.NoError(t, WriteQueryFile(path, Params("CRISPR", opts), rep))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CRISPR", qf.Query.Text)
	assert.Equal(t, opts, qf.Query.Options())
	require.Len(t, qf.Papers, 2)
	assert.Equal(t, rep.Papers[0].DOI, qf.Papers[0].DOI)
	assert.Equal(t, rep.Papers[0].Authors, qf.Papers[0].Authors)
	assert.Equal(t, types.SourceArxiv, qf.Papers[1].Source)
	assert.Equal(t, "https://arxiv.org/pdf/2301.00001.pdf", qf.Papers[1].PDFURL)
	assert.Equal(t, 2, qf.Summary.Total)
	assert.Equal(t, 1, qf.Summary.DuplicatesRemoved)
	assert.Equal(t, "down", qf.Summary.SourceErrors[types.SourceBiorxiv])
}

func TestReadQueryFileRejectsUnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte("query:\n  text: x\npapers:\n  - title: T\n    source: scopus\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := ReadQueryFile(path)
	assert.ErrorIs(t, err, types.ErrUnknownSource)
}

func TestReadQueryFileMissing(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading query file")
}
