package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/nicored/colspec/colspec"
	"github.com/nicored/colspec/csvgrid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Options         colspec.Options     `yaml:"options"`
	Spec            colspec.Spec        `yaml:"spec"`
	Csv             csvgrid.ReadOptions `yaml:"csv"`
	JsCollectors    []*JsCollectorConf  `yaml:"jsCollectors"`
	ExtraCollectors []string            `yaml:"extraCollectors"`
	Output          OutputConf          `yaml:"output"`
	LogLevel        string              `yaml:"logLevel"`
}

// JsCollectorConf declares a collector scripted in javascript
type JsCollectorConf struct {
	File string `yaml:"file"`
	Tag  string `yaml:"tag"`
	Code string `yaml:"code"`
}

type OutputConf struct {
	// File receives the typed CSV, stdout when empty
	File string `yaml:"file"`
	// Condensed prints the condensed column specification to stderr
	Condensed bool `yaml:"condensed"`
	// FailOnError exits with an error when any cell failed to parse
	FailOnError bool `yaml:"failOnError"`
}

type Data struct {
	Config   *Config
	Registry *colspec.Registry

	configFile string
	csvFile    string
}

func main() {
	if len(os.Args) != 3 {
		logrus.Fatal("expecting 2 arguments, the configuration file and the csv file. eg. colspec myconfig.yml mycsv.csv")
	}

	d, err := NewData(os.Args[1], os.Args[2])
	if err != nil {
		logrus.Fatal(err)
	}

	if err := d.Do(context.Background()); err != nil {
		logrus.Fatal(err)
	}
}

func NewData(configFile string, csvFile string) (data *Data, err error) {
	data = &Data{
		configFile: configFile,
		csvFile:    csvFile,
		Registry:   colspec.NewRegistry(),
	}

	if err = data.parseConfig(); err != nil {
		return nil, err
	}

	return data, nil
}

func (d *Data) Do(ctx context.Context) error {
	grid, err := csvgrid.ReadFile(d.csvFile, d.Config.Csv)
	if err != nil {
		return err
	}

	res, err := colspec.Read(ctx, grid, d.Config.Spec, d.options())
	if err != nil {
		return err
	}

	for _, diag := range res.Diagnostics {
		logrus.WithFields(diag.Fields()).Log(diag.Level, "diagnostic")
	}

	if d.Config.Output.Condensed {
		out, err := res.Spec.Condense().YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stderr, string(out))
	}

	if d.Config.Output.File != "" {
		err = csvgrid.WriteFile(d.Config.Output.File, res)
	} else {
		err = csvgrid.Write(os.Stdout, res)
	}
	if err != nil {
		return errors.Wrap(err, "writing output")
	}

	if d.Config.Output.FailOnError && res.HasErrors() {
		return fmt.Errorf("%d diagnostics, some cells could not be parsed", len(res.Diagnostics))
	}

	return nil
}

// options returns the configured options wired to the registry and logger
func (d *Data) options() *colspec.Options {
	opts := d.Config.Options
	opts.Registry = d.Registry
	opts.Logger = logrus.StandardLogger()

	return &opts
}

func (d *Data) parseConfig() error {
	content, err := ioutil.ReadFile(d.configFile)
	if err != nil {
		return err
	}

	conf := &Config{}
	err = yaml.Unmarshal(content, conf)
	if err != nil {
		return errors.Wrapf(err, "parsing '%s'", d.configFile)
	}

	d.Config = conf

	if conf.LogLevel != "" {
		level, err := logrus.ParseLevel(conf.LogLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
	}

	if err = d.importExtraCollectors(); err != nil {
		return err
	}

	return d.importJsCollectors()
}

func (d *Data) importExtraCollectors() error {
	for _, name := range d.Config.ExtraCollectors {
		var c colspec.CollectorI

		switch colspec.Tag(name) {
		case colspec.TagCurrency:
			c = colspec.CurrencyCollector()
		case colspec.TagPercent:
			c = colspec.PercentCollector()
		default:
			return fmt.Errorf("extra collector '%s' does not exist", name)
		}

		if err := d.Registry.Add(c); err != nil {
			return err
		}
	}

	return nil
}

func (d *Data) importJsCollectors() error {
	for _, jc := range d.Config.JsCollectors {
		var code rune
		if runes := []rune(jc.Code); len(runes) > 0 {
			code = runes[0]
		}

		collector, err := colspec.NewJSCollector(jc.File, colspec.Tag(jc.Tag), code)
		if err != nil {
			return err
		}

		if err = d.Registry.Add(collector); err != nil {
			return err
		}
	}

	return nil
}
