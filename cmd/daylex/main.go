package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/example/daylex/internal/backup"
	"github.com/example/daylex/internal/clock"
	"github.com/example/daylex/internal/config"
	"github.com/example/daylex/internal/deck"
	"github.com/example/daylex/internal/domain"
	"github.com/example/daylex/internal/progress"
	"github.com/example/daylex/internal/session"
	"github.com/example/daylex/internal/srs"
	"github.com/example/daylex/internal/store"
	"github.com/example/daylex/internal/web"
)

const usage = `daylex tracks daily language practice and schedules vocabulary reviews.

Usage: daylex [flags] <command> [args]

Commands:
  stats                  show today's XP, streak and week total
  xp <amount> [category] credit practice XP (listening, speaking, reading, vocab, phrases)
  reset-day              zero out today's XP and category flags
  goal up|down           adjust the daily XP goal
  minutes <n>            set the daily minutes target
  hours <n>              set the weekly hours target

  add <front> <back>     add a vocabulary card
  list                   list all cards
  remove <id>            remove a card
  due                    list cards due today
  review                 run an interactive review session
  import-deck <file>     merge cards from a deck file
  clear-cards            remove every card

  export [file]          write a backup document (stdout by default)
  import <file>          restore a backup document
  backup                 commit a snapshot into the backup repository
  factory-reset          wipe all stored data
  serve                  run the local JSON API

Flags:
`

func main() {
	flags := pflag.NewFlagSet("daylex", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to the config file")
	flags.String("db_path", "", "sqlite database file")
	flags.String("listen_addr", "", "bind address for the serve command")
	flags.String("backup_repo", "", "local git repository for backup snapshots")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, flags.FlagUsages())
	}
	flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	eng := openEngine(cfg)
	defer eng.close()

	if err := run(eng, cfg, args[0], args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

// engine bundles the assembled pieces every command works against.
type engine struct {
	store   *store.Store
	tracker *progress.Tracker
	sched   *srs.Scheduler
	db      *store.SQLite
}

// openEngine wires the store, tracker and scheduler. A database that
// cannot be opened is not fatal: the store runs memory-only and the
// status surface reports it.
func openEngine(cfg *config.Config) *engine {
	var backend store.Backend
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Warn("failed to open database, continuing in memory", "path", cfg.DBPath, "error", err)
	} else {
		backend = db
	}

	s := store.New(backend)
	c := clock.System{}
	return &engine{
		store:   s,
		tracker: progress.New(s, c),
		sched:   srs.New(s, c),
		db:      db,
	}
}

func (e *engine) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func run(eng *engine, cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "stats":
		return cmdStats(eng)
	case "xp":
		return cmdXP(eng, args)
	case "reset-day":
		eng.tracker.ResetToday()
		fmt.Println("Today's progress cleared.")
		return nil
	case "goal":
		return cmdGoal(eng, args)
	case "minutes":
		return cmdMinutes(eng, args)
	case "hours":
		return cmdHours(eng, args)
	case "add":
		return cmdAdd(eng, args)
	case "list":
		return cmdList(eng)
	case "remove":
		return cmdRemove(eng, args)
	case "due":
		return cmdDue(eng)
	case "review":
		return cmdReview(eng)
	case "import-deck":
		return cmdImportDeck(eng, args)
	case "clear-cards":
		return cmdClearCards(eng)
	case "export":
		return cmdExport(eng, args)
	case "import":
		return cmdImport(eng, args)
	case "backup":
		return cmdBackup(eng, cfg)
	case "factory-reset":
		return cmdFactoryReset(eng)
	case "serve":
		return cmdServe(eng, cfg)
	default:
		return fmt.Errorf("unknown command %q, run daylex --help", cmd)
	}
}

func cmdStats(eng *engine) error {
	today := eng.tracker.Today()
	goal := eng.tracker.Goal()

	if !eng.store.IsPersistent() {
		fmt.Println("! running memory-only, progress will not survive this process")
	}
	fmt.Printf("%s\n", today)
	fmt.Printf("  XP today:   %d / %d\n", eng.tracker.XP(today), goal)
	fmt.Printf("  This week:  %d XP\n", eng.tracker.WeekTotal(today))
	fmt.Printf("  Streak:     %d day(s)\n", eng.tracker.Streak(goal))
	fmt.Printf("  Due cards:  %d\n", eng.sched.DueCount(today))

	flags := eng.tracker.Flags(today)
	if len(flags) > 0 {
		done := make([]string, 0, len(flags))
		for _, cat := range domain.Categories {
			if flags[cat] {
				done = append(done, cat)
			}
		}
		fmt.Printf("  Practiced:  %s\n", strings.Join(done, ", "))
	}

	history := eng.tracker.History(7)
	if len(history) > 0 {
		fmt.Println("  Last days:")
		for _, d := range history {
			fmt.Printf("    %s  %d XP\n", d.Day, d.XP)
		}
	}
	return nil
}

func cmdXP(eng *engine, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: daylex xp <amount> [category]")
	}
	amount, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid XP amount %q: %w", args[0], err)
	}
	category := ""
	if len(args) > 1 {
		category = args[1]
	}
	eng.tracker.AddXP(amount, category)

	today := eng.tracker.Today()
	fmt.Printf("XP today: %d / %d\n", eng.tracker.XP(today), eng.tracker.Goal())
	return nil
}

func cmdGoal(eng *engine, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: daylex goal up|down")
	}
	var goal int
	switch args[0] {
	case "up":
		goal = eng.tracker.IncreaseGoal()
	case "down":
		goal = eng.tracker.DecreaseGoal()
	default:
		return errors.New("usage: daylex goal up|down")
	}
	fmt.Printf("Daily XP goal: %d\n", goal)
	return nil
}

func cmdMinutes(eng *engine, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: daylex minutes <n>")
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid minutes %q: %w", args[0], err)
	}
	fmt.Printf("Daily minutes target: %d\n", eng.tracker.SetDailyMinutes(v))
	return nil
}

func cmdHours(eng *engine, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: daylex hours <n>")
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid hours %q: %w", args[0], err)
	}
	fmt.Printf("Weekly hours target: %d\n", eng.tracker.SetWeeklyHours(v))
	return nil
}

func cmdAdd(eng *engine, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: daylex add <front> <back>")
	}
	card, err := eng.sched.Add(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (due %s)\n", card.Front, card.Due)
	return nil
}

func cmdList(eng *engine) error {
	cards := eng.sched.All()
	if len(cards) == 0 {
		fmt.Println("No cards yet. Add one with: daylex add <front> <back>")
		return nil
	}
	for _, c := range cards {
		fmt.Printf("%s  due %s  ease %.2f  reps %d\n  %s = %s\n", c.ID, c.Due, c.Ease, c.Reps, c.Front, c.Back)
	}
	return nil
}

func cmdRemove(eng *engine, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: daylex remove <id>")
	}
	if !eng.sched.Remove(args[0]) {
		return fmt.Errorf("no card with ID %s", args[0])
	}
	fmt.Println("Removed.")
	return nil
}

func cmdDue(eng *engine) error {
	due := eng.sched.Due(eng.sched.Today())
	if len(due) == 0 {
		fmt.Println("Nothing due today.")
		return nil
	}
	for _, c := range due {
		fmt.Printf("%s  %s\n", c.ID, c.Front)
	}
	return nil
}

// cmdReview runs an interactive review session on stdin. Each card is
// shown front first; rating it awards XP and flags vocabulary practice
// for the day.
func cmdReview(eng *engine) error {
	sess := session.New(eng.sched)
	if err := sess.Start(); err != nil {
		if errors.Is(err, session.ErrNothingDue) {
			fmt.Println("Nothing due today.")
			return nil
		}
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%d card(s) due. Enter reveals, 0/2/3/4 rates, s skips, q quits.\n\n", sess.Remaining()+1)

	for sess.State() != session.Finished {
		card, ok := sess.Current()
		if !ok {
			break
		}
		fmt.Printf("Q: %s\n> ", card.Front)
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		switch strings.TrimSpace(line) {
		case "q":
			fmt.Println("Session abandoned.")
			return nil
		case "s":
			sess.Skip()
			continue
		}

		back, err := sess.Reveal()
		if err != nil {
			return err
		}
		fmt.Printf("A: %s\n", back)

		for sess.State() == session.AwaitingRating {
			fmt.Print("rate [0=again 2=hard 3=good 4=easy, s=skip, q=quit]> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil
			}
			input := strings.TrimSpace(line)
			switch input {
			case "q":
				fmt.Println("Session abandoned.")
				return nil
			case "s":
				sess.Skip()
				continue
			}
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Println("Enter 0, 2, 3 or 4.")
				continue
			}
			if err := sess.SubmitRating(domain.Grade(n)); err != nil {
				fmt.Println("Enter 0, 2, 3 or 4.")
				continue
			}
			eng.tracker.AddXP(domain.DefaultReward, domain.CategoryVocab)
		}
		fmt.Println()
	}

	today := eng.tracker.Today()
	fmt.Printf("Done: %d rated, %d skipped. XP today: %d / %d\n",
		sess.Rated(), sess.Skipped(), eng.tracker.XP(today), eng.tracker.Goal())
	return nil
}

func cmdImportDeck(eng *engine, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: daylex import-deck <file>")
	}
	items, err := deck.ParseFile(args[0])
	if err != nil {
		return err
	}
	added, skipped := eng.sched.Merge(items)
	fmt.Printf("Merged %s: %d added, %d skipped.\n", args[0], added, skipped)
	return nil
}

func cmdClearCards(eng *engine) error {
	fmt.Printf("This removes all %d card(s). Type yes to continue: ", eng.sched.Len())
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "yes" {
		fmt.Println("Aborted.")
		return nil
	}
	eng.sched.ClearAll()
	fmt.Println("Vocabulary cleared.")
	return nil
}

func cmdExport(eng *engine, args []string) error {
	data, err := backup.Export(eng.store)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup to %s: %w", args[0], err)
	}
	fmt.Printf("Backup written to %s\n", args[0])
	return nil
}

func cmdImport(eng *engine, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: daylex import <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", args[0], err)
	}
	if err := backup.Import(eng.store, data); err != nil {
		return err
	}
	eng.sched.Reload()
	fmt.Printf("Restored %d card(s) and progress from %s\n", eng.sched.Len(), args[0])
	return nil
}

func cmdBackup(eng *engine, cfg *config.Config) error {
	data, err := backup.Export(eng.store)
	if err != nil {
		return err
	}
	hash, err := backup.Snapshot(cfg.BackupRepo, data)
	if err != nil {
		return err
	}
	if hash == "" {
		fmt.Println("No changes since the last snapshot.")
		return nil
	}
	fmt.Printf("Snapshot committed: %s\n", hash)
	return nil
}

func cmdFactoryReset(eng *engine) error {
	fmt.Print("This wipes all progress, settings and cards. Type yes to continue: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "yes" {
		fmt.Println("Aborted.")
		return nil
	}
	eng.store.Clear()
	fmt.Println("All data wiped. Defaults will be restored on the next run.")
	return nil
}

func cmdServe(eng *engine, cfg *config.Config) error {
	srv := web.NewServer(eng.store, eng.tracker, eng.sched)
	slog.Info("serving", "addr", cfg.ListenAddr, "mode", eng.store.CurrentMode().String())
	return http.ListenAndServe(cfg.ListenAddr, srv)
}
