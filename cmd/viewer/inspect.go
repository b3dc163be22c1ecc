package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/spf13/cobra"

	"viz-engine/internal/backend"
	"viz-engine/internal/backend/canvas"
	"viz-engine/internal/backend/scenemarkup"
	"viz-engine/internal/compositor"
	"viz-engine/internal/engineconfig"
	"viz-engine/internal/fonts"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
)

func newDescribeCmd() *cobra.Command {
	var counts bool
	cmd := &cobra.Command{
		Use:   "describe <concept>",
		Short: "Print a concept's geometry description as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := geometry.NewLibrary().Describe(args[0])
			out := cmd.OutOrStdout()
			if !counts {
				return desc.WriteYAML(out)
			}
			fmt.Fprintf(out, "%s (%d primitives, radius %.2f)\n", desc.Concept, len(desc.Primitives), desc.BoundingRadius)
			for _, c := range desc.Counts() {
				fmt.Fprintf(out, "  %-16s %d\n", c.Group, c.Count)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&counts, "counts", false, "Print primitive counts per group instead of the full description")
	return cmd
}

func newConceptsCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "concepts",
		Short: "List the built-in concepts and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := geometry.NewLibrary()
			if check {
				if err := lib.Warm(cmd.Context(), runtime.NumCPU()); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, id := range lib.Concepts() {
				if aliases := lib.Aliases(id); len(aliases) > 0 {
					fmt.Fprintf(out, "%s (%s)\n", id, strings.Join(aliases, ", "))
				} else {
					fmt.Fprintln(out, id)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Generate and validate every concept first")
	return cmd
}

// frameFlags are the options shared by the export commands.
type frameFlags struct {
	at      time.Duration
	out     string
	subject string
	width   int
	height  int
}

func (ff *frameFlags) register(cmd *cobra.Command, out string) {
	cmd.Flags().DurationVar(&ff.at, "at", 0, "Animation time of the frame")
	cmd.Flags().StringVarP(&ff.out, "out", "o", out, "Output file; - writes to stdout")
	cmd.Flags().StringVar(&ff.subject, "subject", "", "Subject label shown beside the title")
	cmd.Flags().IntVar(&ff.width, "width", 0, "Frame width (default from config)")
	cmd.Flags().IntVar(&ff.height, "height", 0, "Frame height (default from config)")
}

// compose loads prefs and resolves the named concept at ff.at from the home camera.
func (ff *frameFlags) compose(cmd *cobra.Command, name string) (engineconfig.Prefs, compositor.Frame, *logger.Logger, error) {
	p, fixes, err := loadPrefs(cmd, func(p *engineconfig.Prefs) {
		if ff.width > 0 {
			p.Width = ff.width
		}
		if ff.height > 0 {
			p.Height = ff.height
		}
	})
	if err != nil {
		return p, compositor.Frame{}, nil, err
	}
	log := openLog(p, fixes)
	desc := geometry.NewLibrary().Describe(name)
	f := newCompositor(p, log).Compose(desc, homeCamera(p, desc), float64(ff.at.Milliseconds()))
	f.Subject = geometry.DisplayName(ff.subject)
	return p, f, log, nil
}

func (ff *frameFlags) size(p engineconfig.Prefs) image.Point {
	return image.Pt(p.Width, p.Height)
}

func newSnapshotCmd() *cobra.Command {
	ff := &frameFlags{}
	cmd := &cobra.Command{
		Use:   "snapshot <concept>",
		Short: "Render one frame with the canvas back end and save it as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, f, log, err := ff.compose(cmd, args[0])
			if err != nil {
				return err
			}
			defer log.Close()

			feed := &backgroundFeed{}
			if load := feed.loader(p.Background, log); load != nil {
				if err := load(cmd.Context()); err != nil {
					return err
				}
			}
			opts, err := canvasOptions(p, feed, log)
			if err != nil {
				return err
			}
			buf := backend.NewBuffer(ff.size(p))
			b := canvas.New(opts)
			if err := b.Init(buf); err != nil {
				return err
			}
			defer b.Close()
			if err := b.Draw(f, buf.Size()); err != nil {
				return err
			}
			if ff.out == "-" {
				return imgio.PNGEncoder()(cmd.OutOrStdout(), buf.Last())
			}
			if err := imgio.Save(ff.out, buf.Last(), imgio.PNGEncoder()); err != nil {
				return fmt.Errorf("save %s: %w", ff.out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s at %s)\n", ff.out, f.Concept, ff.at)
			return nil
		},
	}
	ff.register(cmd, "frame.png")
	return cmd
}

func newSceneCmd() *cobra.Command {
	ff := &frameFlags{}
	cmd := &cobra.Command{
		Use:   "scene <concept>",
		Short: "Export a concept as a declarative scene document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, f, log, err := ff.compose(cmd, args[0])
			if err != nil {
				return err
			}
			defer log.Close()

			doc := scenemarkup.NewDocument(ff.size(p), f.Title)
			b := scenemarkup.New(scenemarkup.Options{Log: log})
			if err := b.Init(doc); err != nil {
				return err
			}
			defer b.Close()
			if err := b.Draw(f, doc.Size()); err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if ff.out != "-" {
				file, err := os.Create(ff.out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return doc.Render(w)
		},
	}
	ff.register(cmd, "-")
	return cmd
}

func newFontCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "font <family>",
		Short: "Download a Google Fonts family for the info panel",
		Long: `Download a Google Fonts family for the info panel.

The file is saved under assets/fonts, where panel_font can then name the family.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := fonts.Fetcher{Dir: dir}.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", fonts.BaseDirs()[0], "Directory to save the font in")
	return cmd
}
