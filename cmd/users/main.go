package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/app"
	"github.com/rosvybory/observadores/internal/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg, prometheus.NewRegistry())
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível inicializar")
	}
	defer a.Close()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		err = runCreate(ctx, a, args)
	case "merge":
		err = runMerge(ctx, a, args)
	case "roles":
		err = runRoles(ctx, a, args)
	case "reset":
		err = runReset(ctx, a, args)
	case "sms-log":
		err = runSMSLog(ctx, a, args)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("comando falhou")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "users CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  users create <requerimento-id>...")
	fmt.Fprintln(os.Stderr, "  users merge --user 42 [--keep-current-roles] <requerimento-id>...")
	fmt.Fprintln(os.Stderr, "  users roles <usuario-id> [papel-id...]")
	fmt.Fprintln(os.Stderr, "  users reset <telefone>")
	fmt.Fprintln(os.Stderr, "  users sms-log [--limit 20]")
}

// Operações pela CLI rodam em contexto de sistema, sem escopo de ator.
func runCreate(ctx context.Context, a *app.App, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	u, err := a.Users.CreateFromApplications(ctx, nil, ids)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"id": u.ID, "name": u.FullName(), "phone": u.Phone, "roles": u.Roles.Slugs()})
}

func runMerge(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		userID = fs.Int64("user", 0, "id do usuário existente")
		keep   = fs.Bool("keep-current-roles", false, "não altera as funções de nomeação")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 {
		return errors.New("--user é obrigatório")
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}

	u, err := a.Users.UpdateFromApplications(ctx, nil, *userID, ids, !*keep)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"id": u.ID, "name": u.FullName(), "roles": u.Roles.Slugs(), "current_roles": len(u.CurrentRoles)})
}

func runRoles(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("informe o id do usuário")
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	u, err := a.Users.UpdateRoles(ctx, nil, ids[0], ids[1:])
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"id": u.ID, "roles": u.Roles.Slugs(), "may_login": u.MayLogin()})
}

func runReset(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("informe o telefone")
	}
	if err := a.Users.ResetPassword(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func runSMSLog(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("sms-log", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "quantidade de registros")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.SMS.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("nenhum envio registrado")
		return nil
	}
	return printJSON(entries)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, raw := range args {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("id inválido: %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
