package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akolanti/DocAssist/internal/app"
	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/urfave/cli/v3"
)

// AskAction answers one question from the command line.
func AskAction(ctx context.Context, cmd *cli.Command) error {
	question := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("usage: docctl ask [--mode cees|chris] [--tier standard|advanced] <question>")
	}
	mode, ok := chatModel.ParseMode(cmd.String("mode"))
	if !ok {
		return fmt.Errorf("unknown mode %q", cmd.String("mode"))
	}
	tier, ok := chatModel.ParseTier(cmd.String("tier"))
	if !ok {
		return fmt.Errorf("unknown tier %q", cmd.String("tier"))
	}

	pipeline, err := newPipeline(ctx, cmd, app.Options{SkipMigrate: true})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ans, err := pipeline.Composer.Answer(ctx, chatModel.Question{
		Text:   question,
		Mode:   mode,
		Tier:   tier,
		Caller: "docctl",
	})
	if err != nil {
		return err
	}
	printAnswer(cmd.Root().Writer, ans)
	return nil
}

func printAnswer(w io.Writer, ans chatModel.Answer) {
	fmt.Fprintln(w, ans.Text)
	if len(ans.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, s := range ans.Sources {
		fmt.Fprintf(w, "  [%d] %s", i+1, s.FileName)
		if s.Category != "" {
			fmt.Fprintf(w, " (%s)", s.Category)
		}
		fmt.Fprintf(w, " chunk %d, similarity %.2f\n", s.ChunkIndex, s.Similarity)
	}
}
