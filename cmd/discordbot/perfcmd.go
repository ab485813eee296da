/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/chess-pre/internal"
	"github.com/mikeb26/chess-pre/perf"
	"github.com/mikeb26/chess-pre/pre"
	"github.com/mikeb26/chess-pre/uschess"
)

type PerfSubCommand string

const (
	PerfAboutCmd     PerfSubCommand = "about"
	PerfHelpCmd      PerfSubCommand = "help"
	PerfCPRCmd       PerfSubCommand = "cpr"
	PerfRatingCmd    PerfSubCommand = "rating"
	PerfBestCmd      PerfSubCommand = "best"
	PerfThresholdCmd PerfSubCommand = "threshold"
	PerfPreCmd       PerfSubCommand = "pre"
)

var perfSubCmdHdlrs = map[PerfSubCommand]CmdHandler{
	PerfAboutCmd:     perfAboutCmdHandler,
	PerfHelpCmd:      perfHelpCmdHandler,
	PerfCPRCmd:       perfCPRCmdHandler,
	PerfRatingCmd:    perfRatingCmdHandler,
	PerfBestCmd:      perfBestCmdHandler,
	PerfThresholdCmd: perfThresholdCmdHandler,
	PerfPreCmd:       perfPreCmdHandler,
}

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func perfCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(PerfCmd),
		Description: "Chess performance ratings; try /perf help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfHelpCmd),
				Description: "Show usage for perf",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfAboutCmd),
				Description: "Show information about chess-pre",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfCPRCmd),
				Description: "Complete performance rating from an average rating and a score",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "average",
						Description: "Average rating of the opponents",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "score",
						Description: "Points scored",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "games",
						Description: "Number of games played",
						Required:    true,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfRatingCmd),
				Description: "Performance rating against a list of opponents",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "ratings",
						Description: "Comma separated opponent ratings",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "score",
						Description: "Points scored",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "mode",
						Description: "Solver mode (default is exact)",
						Required:    false,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "exact", Value: "exact"},
							{Name: "linear", Value: "linear"},
						},
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfBestCmd),
				Description: "Best performance from a perfect score against some of the opponents",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "ratings",
						Description: "Comma separated opponent ratings",
						Required:    true,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfThresholdCmd),
				Description: "Win probability and estimated performance for a score",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "average",
						Description: "Average rating of the opponents",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "score",
						Description: "Points scored",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "games",
						Description: "Number of games played",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "threshold",
						Description: "Threshold probability (default is 0.75)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(PerfPreCmd),
				Description: "Performance rating equilibrium of a US Chess rated event",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "eventid",
						Description: "US Chess event id",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "section",
						Description: "Only this section (default is every section)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
		},
	}
}

func perfCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := perfHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := perfSubCmdHdlrs[PerfSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subOptions returns the options of the invoked subcommand by name, and
// whether the response should be shared with the channel.
func subOptions(inter *discordgo.Interaction) (
	map[string]*discordgo.ApplicationCommandInteractionDataOption, bool) {

	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	data := inter.ApplicationCommandData()
	if len(data.Options) > 0 {
		for _, opt := range data.Options[0].Options {
			opts[opt.Name] = opt
		}
	}
	broadcast := false
	if opt, ok := opts["broadcast"]; ok {
		broadcast = opt.BoolValue()
	}
	return opts, broadcast
}

func missingOption(resp *discordgo.InteractionResponse, cmd string,
	names ...string) *discordgo.InteractionResponse {

	return failure(resp, cmd, "Please provide %v.", strings.Join(names, ", "))
}

// failure sets the response content to an error message for the user.
func failure(resp *discordgo.InteractionResponse, cmd string, format string,
	args ...any) *discordgo.InteractionResponse {

	resp.Data.Content = fmt.Sprintf(format, args...)
	slog.Info("discordbot."+cmd+": request failed", "msg", resp.Data.Content)
	return resp
}

//go:embed about.txt
var aboutText string

func perfAboutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(aboutText)
	return resp
}

//go:embed help.md
var helpText string

func perfHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

func roundedOrDash(r float64, err error) string {
	if err != nil {
		return "-"
	}
	return strconv.Itoa(int(math.Round(r)))
}

func perfCPRCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	avg, okAvg := opts["average"]
	score, okScore := opts["score"]
	games, okGames := opts["games"]
	if !okAvg || !okScore || !okGames {
		return missingOption(resp, "cpr", "average", "score", "games")
	}

	cpr, err := perf.CPR(avg.FloatValue(), score.FloatValue(), int(games.IntValue()))
	if err != nil {
		return failure(resp, "cpr", "Unable to compute CPR: %v", err)
	}

	resp.Data.Content = fmt.Sprintf("%v / %v against %v average\nCPR: **%v**\nLinear: %v",
		internal.ScoreToString(score.FloatValue()), games.IntValue(),
		int(avg.FloatValue()), int(math.Round(cpr)),
		int(math.Round(perf.LinearPerformance(avg.FloatValue(),
			score.FloatValue(), int(games.IntValue())))))
	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

// parseRatings parses a comma or whitespace separated rating list. "unr"
// and "0" are unrated.
func parseRatings(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no ratings given: %w", perf.ErrInputEmpty)
	}

	ratings := make([]float64, 0, len(fields))
	for _, f := range fields {
		if strings.EqualFold(strings.TrimSuffix(f, "."), "unr") {
			ratings = append(ratings, perf.Unrated)
			continue
		}
		r, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(r) || r < 0 {
			return nil, fmt.Errorf("invalid rating %q: %w", f, perf.ErrInvalidInput)
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}

func perfRatingCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	ratingsOpt, okRatings := opts["ratings"]
	score, okScore := opts["score"]
	if !okRatings || !okScore {
		return missingOption(resp, "rating", "ratings", "score")
	}

	solverOpts := solverConfig.Perf
	if modeOpt, ok := opts["mode"]; ok {
		mode, err := perf.ParseMode(modeOpt.StringValue())
		if err != nil {
			return failure(resp, "rating", "Unknown mode %q", modeOpt.StringValue())
		}
		solverOpts.Mode = mode
	}

	ratings, err := parseRatings(ratingsOpt.StringValue())
	if err != nil {
		return failure(resp, "rating", "Unable to compute performance: %v", err)
	}
	solver, err := perf.NewSolver(solverOpts)
	if err != nil {
		return failure(resp, "rating", "Unable to compute performance: %v", err)
	}
	rating, err := solver.Solve(ratings, score.FloatValue())
	if err != nil {
		return failure(resp, "rating", "Unable to compute performance: %v", err)
	}

	filled, err := perf.FillUnrated(ratings, solverOpts.Fallback)
	if err != nil {
		return failure(resp, "rating", "Unable to compute performance: %v", err)
	}
	resp.Data.Content = fmt.Sprintf("%v in %v games\nPerformance (%v): **%v**\nCPR: %v",
		internal.ScoreToString(score.FloatValue()), len(filled),
		solverOpts.Mode, int(math.Round(rating)),
		roundedOrDash(perf.CompletePerformance(filled, score.FloatValue())))
	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func perfBestCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	ratingsOpt, ok := opts["ratings"]
	if !ok {
		return missingOption(resp, "best", "ratings")
	}

	ratings, err := parseRatings(ratingsOpt.StringValue())
	if err != nil {
		return failure(resp, "best", "Unable to compute best perfect score: %v", err)
	}
	best, err := perf.BestPerfectScore(ratings)
	if err != nil {
		return failure(resp, "best", "Unable to compute best perfect score: %v", err)
	}

	opponents := make([]string, 0, len(best.Subset))
	for _, idx := range best.Subset {
		opponents = append(opponents, strconv.Itoa(int(ratings[idx])))
	}
	resp.Data.Content = fmt.Sprintf("Best perfect score: **%v**\nBeating: %v",
		int(math.Round(best.Rating)), strings.Join(opponents, ", "))
	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func perfThresholdCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	avgOpt, okAvg := opts["average"]
	scoreOpt, okScore := opts["score"]
	gamesOpt, okGames := opts["games"]
	if !okAvg || !okScore || !okGames {
		return missingOption(resp, "threshold", "average", "score", "games")
	}
	threshold := 0.75
	if opt, ok := opts["threshold"]; ok {
		threshold = opt.FloatValue()
	}
	avg := avgOpt.FloatValue()

	m, n := perf.AdjustScore(scoreOpt.FloatValue(), gamesOpt.FloatValue())
	opt, err := perf.Optimize(m, n, threshold)
	if err != nil {
		return failure(resp, "threshold", "Unable to compute threshold: %v", err)
	}
	optPlus, err := perf.OptimizePlus(m, n, threshold)
	if err != nil {
		return failure(resp, "threshold", "Unable to compute threshold: %v", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v / %v against %v average, threshold %v\n",
		m, n, int(avg), threshold))
	sb.WriteString(fmt.Sprintf("w*: %.4f (probability %.4f)\n", opt.W,
		opt.Probability))
	sb.WriteString(fmt.Sprintf("EPR: **%v**\n",
		roundedOrDash(perf.EstimatedPerformance(opt.W, avg))))
	sb.WriteString(fmt.Sprintf("TPR: %v\n",
		roundedOrDash(perf.TournamentPerformance(float64(m), float64(n), avg))))
	sb.WriteString(fmt.Sprintf("FIDE: %v\n",
		roundedOrDash(perf.FidePerformance(float64(m), float64(n), avg))))
	sb.WriteString(fmt.Sprintf("w*+: %.4f (probability %.4f)\n", optPlus.W,
		optPlus.Probability))
	sb.WriteString(fmt.Sprintf("EPR+: %v\n",
		roundedOrDash(perf.EstimatedPerformance(optPlus.W, avg))))
	resp.Data.Content = truncateContent(sb.String())

	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func perfPreCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	eventOpt, ok := opts["eventid"]
	if !ok {
		return missingOption(resp, "pre", "an event ID")
	}
	eventID := eventOpt.IntValue()

	tourney, err := uschessClient.FetchCrossTables(ctx, uschess.EventID(eventID))
	if err != nil {
		return failure(resp, "pre", "Error fetching event %d: %v", eventID, err)
	}

	rosters := tourney.Rosters()
	if sectionOpt, ok := opts["section"]; ok {
		xt, found := tourney.Section(sectionOpt.StringValue())
		if !found {
			return failure(resp, "pre", "Event %d has no section matching %q.",
				eventID, sectionOpt.StringValue())
		}
		rosters = []*pre.Roster{xt.Roster(tourney.Event.Name)}
	}

	report, err := buildPreReport(ctx, rosters)
	if err != nil {
		return failure(resp, "pre", "Error computing PRE for event %d: %v",
			eventID, err)
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(report))
	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func buildPreReport(ctx context.Context, rosters []*pre.Roster) (string, error) {
	solver, err := pre.NewSolver(solverConfig)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, roster := range rosters {
		g, err := pre.NewGraph(roster)
		if errors.Is(err, perf.ErrInputEmpty) {
			continue
		}
		if err != nil {
			return "", err
		}
		res, err := solver.Run(ctx, g)
		if errors.Is(err, perf.ErrInputEmpty) {
			continue
		}
		if err != nil && !errors.Is(err, perf.ErrNonConvergent) {
			return "", err
		}
		sb.WriteString(pre.BuildReport(res))
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no games to rate: %w", perf.ErrInputEmpty)
	}

	return sb.String(), nil
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
