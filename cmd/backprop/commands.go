package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/born-ml/backprop/internal/fnn"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

func runSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML network descriptor.")
	_ = fs.Parse(args)

	net, err := buildNetwork(*configPath)
	if err != nil {
		return err
	}
	fmt.Println(configTable(net))
	fmt.Println(layersTable(net.Model()))
	return nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "YAML network descriptor.")
		dataPath   = fs.String("data", "", "CSV training data; the last -labels columns are targets.")
		labels     = fs.Int("labels", 1, "Number of label columns at the end of each CSV row.")
		header     = fs.Bool("header", false, "The first CSV row holds column names.")
		epochs     = fs.Int("epochs", 1, "Passes over the training data.")
		batchSize  = fs.Int("batch", 1, "Examples per optimizer step.")
		lr         = fs.Float64("lr", fnn.DefaultLearningRate, "Learning rate.")
		shuffle    = fs.Bool("shuffle", false, "Shuffle the examples every epoch.")
		progress   = fs.Bool("progress", true, "Show a progress bar.")
		outPath    = fs.String("out", "", "File to write the trained parameters to.")
		showRows   = fs.Int("show_epochs", 10, "Number of final epochs listed in the report; 0 lists all.")
	)
	_ = fs.Parse(args)

	net, err := buildNetwork(*configPath)
	if err != nil {
		return err
	}
	ds, err := readDataset(*dataPath, *labels, *header)
	if err != nil {
		return err
	}
	klog.Infof("training on %d examples from %s", ds.Len(), *dataPath)

	history, err := net.Fit(ds, fnn.FitOptions{
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LR:           *lr,
		Shuffle:      *shuffle,
		ShowProgress: *progress,
	})
	if err != nil {
		return err
	}

	fmt.Println(configTable(net))
	fmt.Println(historyTable(history, *showRows))

	if *outPath != "" {
		if err := net.Model().SaveFile(*outPath); err != nil {
			return err
		}
		fmt.Printf("Parameters saved to %s\n", *outPath)
	}
	return nil
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "YAML network descriptor.")
		paramsPath = fs.String("params", "", "Parameter file written by 'backprop train'.")
		dataPath   = fs.String("data", "", "CSV input data.")
		labels     = fs.Int("labels", 0, "Number of label columns at the end of each CSV row; if set, the network is also evaluated.")
		header     = fs.Bool("header", false, "The first CSV row holds column names.")
	)
	_ = fs.Parse(args)

	net, err := buildNetwork(*configPath)
	if err != nil {
		return err
	}
	if *paramsPath == "" {
		return errors.New("missing -params")
	}
	if err := net.Compile(1, 0); err != nil {
		return err
	}
	if err := net.Model().LoadFile(*paramsPath); err != nil {
		return err
	}
	ds, err := readDataset(*dataPath, *labels, *header)
	if err != nil {
		return err
	}

	predictions, err := net.Predict(ds)
	if err != nil {
		return err
	}
	w := csv.NewWriter(os.Stdout)
	for _, row := range predictions {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "failed to write predictions")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to write predictions")
	}

	if *labels > 0 {
		score, err := net.Evaluate(ds)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, scoreTable(score))
	}
	return nil
}

func buildNetwork(configPath string) (*fnn.Network, error) {
	if configPath == "" {
		return nil, errors.New("missing -config")
	}
	cfg, err := fnn.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	return fnn.Build(cfg)
}

func readDataset(path string, labels int, header bool) (*fnn.SliceDataset, error) {
	if path == "" {
		return nil, errors.New("missing -data")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open data file")
	}
	defer f.Close()
	return fnn.ReadCSV(f, labels, fnn.WithHeader(header))
}
