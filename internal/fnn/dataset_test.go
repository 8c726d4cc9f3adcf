package fnn_test

import (
	"strings"
	"testing"

	"github.com/born-ml/backprop/internal/fnn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSliceDataset(t *testing.T) {
	ds, err := fnn.NewSliceDataset([][]float64{{1, 2}, {3, 4}}, [][]float64{{0}, {1}})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.FeatureSize())
	assert.Equal(t, 1, ds.LabelSize())
	assert.Equal(t, []float64{3, 4}, ds.Features(1))
	assert.Equal(t, []float64{1}, ds.Labels(1))

	unlabeled, err := fnn.NewSliceDataset([][]float64{{1}}, nil)
	require.NoError(t, err)
	assert.Zero(t, unlabeled.LabelSize())
	assert.Nil(t, unlabeled.Labels(0))

	_, err = fnn.NewSliceDataset([][]float64{{1, 2}, {3}}, nil)
	assert.Error(t, err, "ragged features")
	_, err = fnn.NewSliceDataset([][]float64{{1}, {2}}, [][]float64{{1}})
	assert.Error(t, err, "row count mismatch")
	_, err = fnn.NewSliceDataset([][]float64{{1}, {2}}, [][]float64{{1}, {1, 2}})
	assert.Error(t, err, "ragged labels")
}

func TestReadCSV(t *testing.T) {
	const table = "0.5,1,0,1\n-1,2.25,1,0\n3,4,0,1\n"
	ds, err := fnn.ReadCSV(strings.NewReader(table), 2)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, ds.FeatureSize())
	assert.Equal(t, 2, ds.LabelSize())
	assert.Equal(t, []float64{-1, 2.25}, ds.Features(1))
	assert.Equal(t, []float64{1, 0}, ds.Labels(1))
}

func TestReadCSV_Header(t *testing.T) {
	const table = "a,b,y\n1,2,3\n4,5,6\n"
	ds, err := fnn.ReadCSV(strings.NewReader(table), 1, fnn.WithHeader(true))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{4, 5}, ds.Features(1))
	assert.Equal(t, []float64{6}, ds.Labels(1))

	unlabeled, err := fnn.ReadCSV(strings.NewReader(table), 0, fnn.WithHeader(true))
	require.NoError(t, err)
	assert.Equal(t, 3, unlabeled.FeatureSize())
	assert.Nil(t, unlabeled.Labels(0))
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := fnn.ReadCSV(strings.NewReader("1,2\n3,x\n"), 1)
	assert.Error(t, err, "non-numeric cell")

	_, err = fnn.ReadCSV(strings.NewReader("1,2\n3,4\n"), 3)
	assert.Error(t, err, "more label columns than columns")
}
