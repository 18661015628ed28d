package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/cli/config"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/service/poller"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const barWidth = 20

func cmdReport() *cli.Command {
	var bossID string
	var watch bool
	var appCfg config.AppConfig
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "boss",
			Aliases:     []string{"b"},
			Usage:       "User ID of the boss whose team is reported",
			Required:    true,
			Sources:     cli.EnvVars("VATRACKER_REPORT_BOSS"),
			Destination: &bossID,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "Re-render every poll interval until the team is empty or interrupted",
			Destination: &watch,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Show today's team dashboard in the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo,
				usecase.WithLocation(app.Location()),
				usecase.WithTeamConcurrency(app.Dashboard.Concurrency),
			)

			if !watch {
				summary, err := uc.Team.AggregateTeam(ctx, bossID)
				if err != nil {
					return err
				}
				renderTeam(os.Stdout, summary)
				return nil
			}

			return watchTeam(ctx, os.Stdout, uc, bossID, app.PollInterval())
		},
	}
}

// watchTeam renders every snapshot until the team empties or ctx ends
func watchTeam(ctx context.Context, w io.Writer, uc *usecase.UseCases, bossID string, interval time.Duration) error {
	fetch := func(ctx context.Context) (*model.TeamSummary, error) {
		return uc.Team.AggregateTeam(ctx, bossID)
	}
	onSnapshot := func(s poller.Snapshot) {
		if s.Err != nil {
			color.New(color.FgRed).Fprintf(w, "refresh failed: %v\n", s.Err)
			return
		}
		if !s.Initial {
			fmt.Fprint(w, "\033[H\033[2J")
		}
		renderTeam(w, s.Summary)
	}

	p := poller.New(fetch, onSnapshot, poller.WithInterval(interval))
	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.Stop()

	select {
	case <-p.Done():
		fmt.Fprintln(w, "Team is empty, stopped watching.")
	case <-ctx.Done():
	}
	return nil
}

// renderTeam writes the dashboard table and totals
func renderTeam(w io.Writer, s *model.TeamSummary) {
	header := color.New(color.Bold)
	header.Fprintf(w, "Team dashboard %s\n", s.Date)

	if len(s.Members) == 0 {
		fmt.Fprintln(w, "No VAs on the team yet. Invite one to get started.")
		return
	}

	fmt.Fprintf(w, "%-24s %-28s %-28s %s\n", "VA", "DMs", "Connections", "Accepted")
	for _, m := range s.Members {
		name := m.FullName
		if name == "" {
			name = m.Email
		}
		if m.Degraded {
			name += " (!)"
		}

		fmt.Fprintf(w, "%-24s %s %s %d (%d%%)\n",
			truncate(name, 24),
			progressCell(m.Activity.DMsSent, m.Goals.DMs, m.Progress.DMsPercent, m.Progress.DMsComplete),
			progressCell(m.Activity.ConnectionsSent, m.Goals.Connections, m.Progress.ConnectionsPercent, m.Progress.ConnectionsComplete),
			m.Activity.ConnectionsAccepted,
			m.Progress.AcceptanceRate,
		)
	}

	header.Fprintf(w, "Total: %d DMs, %d connections, %d accepted\n",
		s.Totals.TotalDMs, s.Totals.TotalConnections, s.Totals.TotalAccepted)
}

func progressCell(actual, goal int, percent float64, complete bool) string {
	filled := int(model.BarPercent(percent) * barWidth / 100)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	text := fmt.Sprintf("%3d/%-3d", actual, goal)

	c := color.New(color.FgYellow)
	if complete {
		c = color.New(color.FgGreen)
	}
	return c.Sprintf("%s %s", text, bar)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
