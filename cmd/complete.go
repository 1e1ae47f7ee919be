package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// globalFlags predicts the values of the flags shared by all subcommands.
func globalFlags() map[string]complete.Predictor {
	return map[string]complete.Predictor{
		"operations":    predict.Files("*.json"),
		"confirmations": predict.Dirs("*"),
		"rates":         predict.Files("*.jsonl"),
		"initial":       predict.Files("*.json"),
		"log-level":     predict.Set{"debug", "info", "warn", "error"},
		"bcb-url":       predict.Something,
		"bcb-rps":       predict.Something,
		"cache-dir":     predict.Dirs("*"),
		"rate-window":   predict.Something,
	}
}

// with returns the global flags and flags.
func with(flags map[string]complete.Predictor) map[string]complete.Predictor {
	all := globalFlags()
	for name, p := range flags {
		all[name] = p
	}
	return all
}

// Complete runs the shell completion of the program name, when the shell asks
// for it, and exits. It returns immediately otherwise.
//
// Install it with: COMP_INSTALL=1 rsu
func Complete(name string) {
	c := &complete.Command{
		Flags: globalFlags(),
		Sub: map[string]*complete.Command{
			"report":  {Flags: with(map[string]complete.Predictor{"replay": predict.Nothing})},
			"summary": {Flags: with(map[string]complete.Predictor{"price": predict.Something, "d": predict.Something})},
			"export": {Flags: with(map[string]complete.Predictor{
				"format": predict.Set{"csv", "xlsx", "none"},
				"dir":    predict.Dirs("*"),
			})},
			"scan": {Flags: with(map[string]complete.Predictor{"o": predict.Files("*.json")})},
			"rates": {Flags: with(map[string]complete.Predictor{
				"from": predict.Something,
				"to":   predict.Something,
				"o":    predict.Files("*.jsonl"),
			})},
			"topic":    {Args: predict.Set{"*", "operations", "confirmations", "position", "rates", "valuation"}},
			"help":     {},
			"commands": {},
			"flags":    {},
		},
	}
	c.Complete(name)
}
