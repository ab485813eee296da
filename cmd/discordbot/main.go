/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/chess-pre/config"
	"github.com/mikeb26/chess-pre/internal"
	"github.com/mikeb26/chess-pre/pre"
	"github.com/mikeb26/chess-pre/uschess"
)

var (
	client        *discordgo.Session
	botPubKey     ed25519.PublicKey
	uschessClient *uschess.Client
	solverConfig  = pre.DefaultConfig()
)

type TopLevelCommand string

const PerfCmd TopLevelCommand = "perf"

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	PerfCmd: perfCmdHandler,
}

func interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, botPubKey) {
		slog.Warn("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Warn("discordbot.int: failed to read request body", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		slog.Warn("discordbot.int: failed to unmarshal interaction", "err", err,
			"body", string(body))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	if inter.Type == discordgo.InteractionPing {
		resp.Type = discordgo.InteractionResponsePong
	} else if inter.Type == discordgo.InteractionApplicationCommand {
		hdlr, ok :=
			topLevelCmdHdlrs[TopLevelCommand(inter.ApplicationCommandData().Name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'",
					inter.ApplicationCommandData().Name),
				Flags: discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	} else {
		slog.Warn("discordbot.int: unimplemented interaction type",
			"type", inter.Type)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		slog.Error("discordbot.int: failed to marshal resp", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		slog.Warn("discordbot.int: failed to write resp", "err", err)
	}
}

//go:embed lastupdate.hash
var lastCmdUpdateHash string

func commandHash(cmd *discordgo.ApplicationCommand) (string, error) {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cmd: %w", err)
	}
	hash := sha256.Sum256(cmdJson)
	return hex.EncodeToString(hash[:]), nil
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand) bool {
	hexString, err := commandHash(cmd)
	if err != nil {
		slog.Error("discordbot.reg: unable to hash command", "err", err)
		return false
	}

	shouldUpdate := hexString != strings.TrimSpace(lastCmdUpdateHash)
	if shouldUpdate {
		slog.Info("discordbot.reg: updating cmd reg; please update lastupdate.hash",
			"hash", hexString)
	}

	return shouldUpdate
}

func registerSlashCommands(appID string, cmdID string) {
	perfCmd := perfCommand()

	if cmdID == "" {
		cmd, err := client.ApplicationCommandCreate(appID, "", perfCmd)
		if err != nil {
			slog.Error("discordbot.reg: failed to register", "cmd", perfCmd.Name,
				"err", err)
			return
		}

		slog.Info("discordbot.reg: registered; set "+config.EnvDiscordPerfCmdID,
			"cmd", cmd.Name, "cmdID", cmd.ID)
	} else if shouldUpdateCmdRegistration(perfCmd) {
		cmd, err := client.ApplicationCommandEdit(appID, "", cmdID, perfCmd)
		if err != nil {
			slog.Error("discordbot.reg: failed to update", "cmd", perfCmd.Name,
				"err", err)
			return
		}

		slog.Info("discordbot.reg: updated", "cmd", cmd.Name, "cmdID", cmd.ID)
	}
}

func main() {
	internal.InitLogging(os.Getenv("PRE_DEBUG") != "")

	cfg, err := config.LoadDiscord()
	if err != nil {
		slog.Error("discordbot.main: failed to load configuration", "err", err)
		os.Exit(1)
	}
	botPubKey = cfg.PublicKey
	solverConfig = cfg.Solver
	uschessClient = uschess.NewClient(context.Background())

	client, err = discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		slog.Error("discordbot.main: failed to initialize discord client",
			"err", err)
		os.Exit(1)
	}
	go registerSlashCommands(cfg.AppID, cfg.PerfCmdID)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	slog.Info("discordbot.main: starting server", "host", hostname,
		"port", cfg.ServerPort)

	http.HandleFunc("/DiscordBot/Interaction", interactionHandler)
	err = http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), nil)
	if err != nil {
		slog.Error("discordbot.main: serve failed", "err", err)
		os.Exit(1)
	}
}
