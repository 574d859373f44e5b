package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/etnz/stockdash/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the sdash documentation" }
func (*topicCmd) Usage() string {
	return `sdash topic [<topic>...]

  Displays the documentation of the given topics, or the index of topics
  when none is given. '*' stands for every topic.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := f.Args()
	if len(names) == 0 {
		names = []string{"readme"}
	}

	doc, err := docs.GetTopics(names...)
	if errors.Is(err, fs.ErrNotExist) {
		known, _ := docs.GetAllTopics()
		fmt.Fprintf(os.Stderr, "Error: %v, want one of %s\n", err, strings.Join(known, ", "))
		return subcommands.ExitUsageError
	}
	if err != nil {
		return failure("loading documentation", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
