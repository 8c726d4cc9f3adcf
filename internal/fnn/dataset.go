package fnn

import (
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Dataset is a random-access collection of examples.
//
// Features(i) and Labels(i) must have FeatureSize and LabelSize elements.
// The returned slices are read, never modified. A dataset used only for
// prediction may have LabelSize 0.
type Dataset interface {
	Len() int
	Features(i int) []float64
	Labels(i int) []float64
	FeatureSize() int
	LabelSize() int
}

// SliceDataset is a Dataset backed by in-memory rows.
type SliceDataset struct {
	features, labels [][]float64
	featureSize      int
	labelSize        int
}

// NewSliceDataset wraps features and labels, which must have the same number
// of rows and a constant width each. labels may be nil.
func NewSliceDataset(features, labels [][]float64) (*SliceDataset, error) {
	if labels != nil && len(labels) != len(features) {
		return nil, errors.Errorf("dataset: %d feature rows but %d label rows", len(features), len(labels))
	}
	ds := &SliceDataset{features: features, labels: labels}
	if len(features) > 0 {
		ds.featureSize = len(features[0])
	}
	if len(labels) > 0 {
		ds.labelSize = len(labels[0])
	}
	for i := range features {
		if len(features[i]) != ds.featureSize {
			return nil, errors.Errorf("dataset: row %d has %d features, want %d", i, len(features[i]), ds.featureSize)
		}
		if labels != nil && len(labels[i]) != ds.labelSize {
			return nil, errors.Errorf("dataset: row %d has %d labels, want %d", i, len(labels[i]), ds.labelSize)
		}
	}
	return ds, nil
}

func (ds *SliceDataset) Len() int                 { return len(ds.features) }
func (ds *SliceDataset) Features(i int) []float64 { return ds.features[i] }
func (ds *SliceDataset) FeatureSize() int         { return ds.featureSize }
func (ds *SliceDataset) LabelSize() int           { return ds.labelSize }

func (ds *SliceDataset) Labels(i int) []float64 {
	if ds.labels == nil {
		return nil
	}
	return ds.labels[i]
}

type csvOptions struct {
	header bool
}

// CSVOption configures ReadCSV.
type CSVOption func(*csvOptions)

// WithHeader declares whether the first CSV row holds column names.
// The default is no header.
func WithHeader(header bool) CSVOption {
	return func(o *csvOptions) { o.header = header }
}

// ReadCSV loads a numeric CSV table. The last labelCols columns are labels,
// the others features. Every cell must parse as a float.
func ReadCSV(r io.Reader, labelCols int, opts ...CSVOption) (*SliceDataset, error) {
	var o csvOptions
	for _, opt := range opts {
		opt(&o)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(o.header),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float))
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "failed to read CSV")
	}

	rows, cols := df.Dims()
	if labelCols < 0 || labelCols > cols {
		return nil, errors.Errorf("csv: %d label columns requested, table has %d columns", labelCols, cols)
	}
	featureCols := cols - labelCols

	features := make([][]float64, rows)
	var labels [][]float64
	if labelCols > 0 {
		labels = make([][]float64, rows)
	}
	for i := range rows {
		features[i] = make([]float64, featureCols)
		if labels != nil {
			labels[i] = make([]float64, labelCols)
		}
	}

	for j, name := range df.Names() {
		column := df.Col(name).Float()
		for i, v := range column {
			if math.IsNaN(v) {
				return nil, errors.Errorf("csv: row %d column %q is not a number", i, name)
			}
			if j < featureCols {
				features[i][j] = v
			} else {
				labels[i][j-featureCols] = v
			}
		}
	}
	return NewSliceDataset(features, labels)
}
