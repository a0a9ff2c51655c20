// file: cmd/play.go
// version: 1.1.0
// guid: 4f8b2d60-9e17-4a3c-8d05-b7c1e9f2a46d

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/render"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Browse random artworks interactively",
	Long: `Browse random artworks one catalog tab at a time.

Type a key and press Enter:
  enter/n  shuffle        r  refresh     s  save image
  o        open page      c  cancel      1-3  switch catalog
  q        quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogID, _ := cmd.Flags().GetString("catalog")

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.close()

		p, err := newPlayer(sess, cmd.OutOrStdout(), catalogID)
		if err != nil {
			return err
		}
		return p.run(commandContext(cmd), cmd.InOrStdin())
	},
}

func init() {
	playCmd.Flags().String("catalog", "", "catalog tab to start on: met, aic or cma")
}

type playTab struct {
	info catalog.Info
	tab  *roulette.Tab
}

// player drives one tab per enabled catalog from line-oriented key input.
// Finds run in the background so a new key can supersede them.
type player struct {
	out     io.Writer
	outMu   sync.Mutex
	tabs    []*playTab
	current int
	wg      sync.WaitGroup
}

func newPlayer(sess *session, out io.Writer, initial string) (*player, error) {
	p := &player{out: out}
	for _, e := range sess.registry.Entries() {
		if !e.Enabled {
			continue
		}
		p.tabs = append(p.tabs, &playTab{
			info: e.Info,
			tab:  roulette.NewTab(e.Finder, newPersister(&sess.cfg, nil), newOpener()),
		})
	}
	if len(p.tabs) == 0 {
		return nil, errNoCatalogs
	}
	if initial != "" {
		if _, err := sess.registry.Finder(initial); err != nil {
			return nil, err
		}
		for i, t := range p.tabs {
			if t.info.ID == initial {
				p.current = i
			}
		}
	}
	return p, nil
}

func (p *player) println(s string) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintln(p.out, s)
}

func (p *player) tab() *playTab { return p.tabs[p.current] }

func (p *player) run(ctx context.Context, in io.Reader) error {
	p.printTabs()
	p.println(render.KeyHelp())
	p.shuffle(ctx, p.tab(), false)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if quit := p.handle(ctx, scanner.Text()); quit {
			p.cancelAll()
			p.wg.Wait()
			return nil
		}
	}
	// Input ended: let in-flight finds settle so their results are shown.
	p.wg.Wait()
	return scanner.Err()
}

// handle applies one key and reports whether the player should quit.
func (p *player) handle(ctx context.Context, line string) bool {
	key := strings.ToLower(strings.TrimSpace(line))
	switch key {
	case "", "n":
		p.shuffle(ctx, p.tab(), false)
	case "r":
		p.shuffle(ctx, p.tab(), true)
	case "s":
		p.save(ctx)
	case "o":
		p.open()
	case "c":
		p.tab().tab.Cancel()
	case "h", "?":
		p.println(render.KeyHelp())
	case "q":
		return true
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(p.tabs) {
			p.switchTo(ctx, n-1)
			return false
		}
		p.println(render.Warning("Unknown key " + strconv.Quote(key)))
	}
	return false
}

func (p *player) printTabs() {
	names := make([]string, len(p.tabs))
	for i, t := range p.tabs {
		label := fmt.Sprintf("%d %s", i+1, t.info.Name)
		if i == p.current {
			label = "[" + label + "]"
		}
		names[i] = label
	}
	p.println(render.Header(strings.Join(names, "  ")))
}

// switchTo shows tab i as it was left; a tab that never loaded starts a find.
func (p *player) switchTo(ctx context.Context, i int) {
	p.current = i
	p.printTabs()
	t := p.tab()
	st := t.tab.State()
	switch st.Status {
	case roulette.StatusIdle:
		p.shuffle(ctx, t, false)
	case roulette.StatusLoading:
		p.println(render.Loading(t.info.Name))
	case roulette.StatusFailed:
		p.println(render.Error(st.Message))
	case roulette.StatusReady:
		p.println(render.Card(st.Artwork, t.info.Name))
	}
}

func (p *player) shuffle(ctx context.Context, t *playTab, refresh bool) {
	p.println(render.Loading(t.info.Name))
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		var st roulette.State
		var err error
		if refresh {
			st, err = t.tab.Refresh(ctx)
		} else {
			st, err = t.tab.Shuffle(ctx)
		}
		switch {
		case finder.IsCancelled(err):
		case err != nil:
			p.println(render.Error(st.Message))
		default:
			p.println(render.Card(st.Artwork, t.info.Name))
		}
	}()
}

func (p *player) save(ctx context.Context) {
	path, err := p.tab().tab.Save(ctx)
	switch {
	case errors.Is(err, roulette.ErrNothingShown):
		p.println(render.Warning("Nothing to save yet"))
	case err != nil:
		p.println(render.Error(err.Error()))
	default:
		p.println(render.Success("Saved to " + path))
	}
}

func (p *player) open() {
	t := p.tab()
	url, err := t.tab.OpenSource()
	switch {
	case errors.Is(err, roulette.ErrNothingShown):
		p.println(render.Warning("Nothing to open yet"))
	case err != nil:
		p.println(render.Error(err.Error()))
	default:
		p.println(render.Success("Opened " + url))
	}
}

func (p *player) cancelAll() {
	for _, t := range p.tabs {
		t.tab.Cancel()
	}
}
