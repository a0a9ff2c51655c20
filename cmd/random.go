// file: cmd/random.go
// version: 1.1.0
// guid: 9d3e7a15-2c8b-4f60-b4d1-e6a0c5f8b273

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/models"
	"github.com/jdfalk/art-roulette/internal/render"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/spf13/cobra"
)

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show one random artwork",
	Long: `Find one random public-domain artwork and print it.

Use --save to store the image in the download directory and --open to
view the museum's page for the work.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogID, _ := cmd.Flags().GetString("catalog")
		asJSON, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")
		openPage, _ := cmd.Flags().GetBool("open")
		return runRandom(cmd, catalogID, asJSON, save, openPage)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <image-url>",
	Short: "Save an image to the download directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		return runSave(cmd, args[0], name)
	},
}

var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Open a page in the default browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newOpener().Open(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Success("Opened "+args[0]))
		return nil
	},
}

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "List the museum catalogs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return runCatalogs(cmd, asJSON)
	},
}

func init() {
	randomCmd.Flags().String("catalog", "", "catalog to draw from: met, aic or cma (default: first enabled)")
	randomCmd.Flags().Bool("json", false, "print the artwork as JSON")
	randomCmd.Flags().Bool("save", false, "save the image after finding it")
	randomCmd.Flags().Bool("open", false, "open the artwork's page after finding it")

	saveCmd.Flags().String("name", "", "file name to save under (default: artwork)")

	catalogsCmd.Flags().Bool("json", false, "print the catalogs as JSON")
}

// newTab builds a tab for catalogID, or the first enabled catalog when it is empty.
func (s *session) newTab(catalogID string, progress io.Writer) (*roulette.Tab, catalog.Info, error) {
	if catalogID == "" {
		catalogID = s.registry.DefaultCatalog()
		if catalogID == "" {
			return nil, catalog.Info{}, errNoCatalogs
		}
	}
	f, err := s.registry.Finder(catalogID)
	if err != nil {
		return nil, catalog.Info{}, err
	}
	return roulette.NewTab(f, newPersister(&s.cfg, progress), newOpener()), f.Info(), nil
}

func runRandom(cmd *cobra.Command, catalogID string, asJSON, save, openPage bool) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	ctx := commandContext(cmd)

	tab, info, err := sess.newTab(catalogID, errOut)
	if err != nil {
		return err
	}

	if !asJSON {
		fmt.Fprintln(errOut, render.Loading(info.Name))
	}
	state, err := tab.Shuffle(ctx)
	if err != nil {
		if finder.IsCancelled(err) {
			return err
		}
		return errors.New(state.Message)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state.Artwork); err != nil {
			return fmt.Errorf("failed to encode artwork: %w", err)
		}
	} else {
		fmt.Fprintln(out, render.Card(state.Artwork, info.Name))
	}

	if save {
		path, err := tab.Save(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(errOut, render.Success("Saved to "+path))
	}
	if openPage {
		url, err := tab.OpenSource()
		if err != nil {
			return err
		}
		fmt.Fprintln(errOut, render.Success("Opened "+url))
	}
	return nil
}

func runSave(cmd *cobra.Command, imageURL, name string) error {
	if !models.IsAbsoluteURL(imageURL) {
		return fmt.Errorf("not an absolute http(s) URL: %q", imageURL)
	}
	cfg := config.Snapshot()
	path, err := newPersister(&cfg, cmd.ErrOrStderr()).Persist(commandContext(cmd), imageURL, name)
	if err != nil {
		return fmt.Errorf("%w: %w", roulette.ErrSaveFailed, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Success("Saved to "+path))
	return nil
}

type catalogRow struct {
	catalog.Info
	Enabled bool `json:"enabled"`
}

func runCatalogs(cmd *cobra.Command, asJSON bool) error {
	cfg := config.Snapshot()
	reg := roulette.NewRegistry(cfg, nil)
	out := cmd.OutOrStdout()

	rows := make([]catalogRow, 0, len(config.CatalogIDs))
	for _, e := range reg.Entries() {
		rows = append(rows, catalogRow{Info: e.Info, Enabled: e.Enabled})
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Fprintln(out, render.Header("Catalogs"))
	for _, r := range rows {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(out, "  %-4s %-32s %-12s %s\n", r.ID, r.Name, r.Shape, state)
	}
	return nil
}
