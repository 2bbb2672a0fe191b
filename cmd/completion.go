package cmd

import (
	"flag"

	"github.com/etnz/treasury/docs"
	"github.com/etnz/treasury/montecarlo"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete runs the shell completion of the commander's subcommands when
// the shell asks for it, and exits. Otherwise it returns immediately.
//
// Install it with COMP_INSTALL=1 tsy.
func Complete(c *subcommands.Commander, name string) {
	Completion(c).Complete(name)
}

// Completion describes the subcommands of c and their flags for the shell.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	c.VisitAll(func(f *flag.Flag) { root.Flags[f.Name] = predictFlag(f) })

	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		fs := flag.NewFlagSet(sc.Name(), flag.ContinueOnError)
		sc.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = predictFlag(f) })
		switch sc.Name() {
		case "topic":
			topics, _ := docs.AllTopics()
			sub.Args = predict.Set(topics)
		case "import":
			sub.Args = predict.Files("*.json")
		case "help":
			sub.Args = predict.Set(commandNames(c))
		}
		root.Sub[sc.Name()] = sub
	})
	return root
}

func predictFlag(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch f.Name {
	case "scenario":
		return predict.Set(montecarlo.Presets().Names())
	case "chart":
		return predict.Files("*.png")
	case "config":
		return predict.Files("*.yaml")
	case "data-dir":
		return predict.Dirs("*")
	}
	return predict.Something
}

func commandNames(c *subcommands.Commander) []string {
	var names []string
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) { names = append(names, sc.Name()) })
	return names
}
