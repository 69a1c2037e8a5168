package session

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/maze"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/statistics"
)

// DefaultHistory is how many rounds "history" shows without an argument.
const DefaultHistory = 10

type handler func(s *Session, ctx context.Context, args []string) (string, error)

type command struct {
	usage string
	help  string
	run   handler
}

var lobbyCommands = map[string]command{
	"games":   {"games", "list the games", (*Session).cmdGames},
	"play":    {"play <game>", "switch to a game, abandoning the current one", (*Session).cmdPlay},
	"leave":   {"leave", "return to the lobby, abandoning the current round", (*Session).cmdLeave},
	"balance": {"balance", "show your chips", (*Session).cmdBalance},
	"shop":    {"shop", "list upgrades for sale", (*Session).cmdShop},
	"buy":     {"buy <upgrade>", "purchase an upgrade", (*Session).cmdBuy},
	"status":  {"status", "show the current game", (*Session).cmdStatus},
	"reset":   {"reset", "abandon the current round", (*Session).cmdReset},
	"history": {"history [n]", "list recent rounds", (*Session).cmdHistory},
	"stats":   {"stats", "summarise every recorded round by game", (*Session).cmdStats},
}

var gameCommands = map[games.Kind]map[string]command{
	games.Blackjack: {
		"deal":  {"deal <bet>", "stake a bet and deal", game((*Session).bjDeal)},
		"hit":   {"hit", "take a card", game(func(s *Session, _ []string) error { return s.blackjack.Hit() })},
		"stand": {"stand", "let the dealer play", game(func(s *Session, _ []string) error { return s.blackjack.Stand() })},
		"hint":  {"hint", "peek at the dealer (dealerTell)", (*Session).bjHint},
	},
	games.Roulette: {
		"select": {"select <bet>...", "toggle red|black|green|even|odd|low|high|0-36", game((*Session).rouletteSelect)},
		"clear":  {"clear", "drop every selection", game(func(s *Session, _ []string) error { return s.roulette.ClearSelections() })},
		"spin":   {"spin <unit>", "stake unit on each selection and spin", game((*Session).rouletteSpin)},
	},
	games.Slots: {
		"spin": {"spin <bet>", "pull the lever", game((*Session).slotsSpin)},
	},
	games.Poker: {
		"deal":  {"deal <ante>", "ante for both seats and deal", game((*Session).pokerDeal)},
		"check": {"check", "move to the next street", game(func(s *Session, _ []string) error { return s.poker.Check() })},
		"bet":   {"bet", "bet the ante again", game(func(s *Session, _ []string) error { return s.poker.Bet() })},
		"fold":  {"fold", "give up the hand", game(func(s *Session, _ []string) error { return s.poker.Fold() })},
	},
	games.GoFish: {
		"start": {"start <ante>", "ante for all four seats and deal", game((*Session).fishStart)},
		"ask":   {"ask <rank> <seat 1-3>", "ask an AI for a rank you hold", game((*Session).fishAsk)},
	},
	games.Solitaire: {
		"start":  {"start <bet>", "stake and deal", game((*Session).solitaireStart)},
		"draw":   {"draw", "turn a stock card", game(func(s *Session, _ []string) error { return s.solitaire.DrawFromStock() })},
		"move":   {"move waste|<column 1-7>", "play a card to a foundation", game((*Session).solitaireMove)},
		"giveup": {"giveup", "end the game for a partial refund", game(func(s *Session, _ []string) error { return s.solitaire.GiveUp() })},
		"count":  {"count", "remaining cards by rank (cardCounter)", (*Session).solitaireCount},
	},
	games.Maze: {
		"start": {"start <difficulty>", "easy, medium, hard or expert", game((*Session).mazeStart)},
		"move":  {"move <direction>", "step up, down, left or right", (*Session).mazeMove},
	},
}

// game adapts an action that only reports an error into a handler that
// replies with the game status.
func game(fn func(s *Session, args []string) error) handler {
	return func(s *Session, _ context.Context, args []string) (string, error) {
		if err := fn(s, args); err != nil {
			return "", err
		}
		return s.status(), nil
	}
}

func (s *Session) execute(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return s.status(), nil
	}
	verb, args := fields[0], fields[1:]

	if verb == "help" || verb == "?" {
		return s.help(), nil
	}
	if cmd, ok := gameCommands[s.current][verb]; ok {
		return cmd.run(s, ctx, args)
	}
	if cmd, ok := lobbyCommands[verb]; ok {
		return cmd.run(s, ctx, args)
	}
	if s.current == games.Maze {
		if _, err := maze.ParseDirection(verb); err == nil {
			return s.mazeMove(ctx, []string{verb})
		}
	}
	return "", fmt.Errorf("%w: %q (try 'help')", ErrUnknownCommand, verb)
}

func usage(u string) error {
	return fmt.Errorf("%w: usage: %s", games.ErrIllegalAction, u)
}

func (s *Session) help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-26s %s\n", "help", "list the commands available here")
	writeCommands(&b, lobbyCommands)
	if s.current != "" {
		fmt.Fprintf(&b, "\n%s:\n", s.current)
		writeCommands(&b, gameCommands[s.current])
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeCommands(b *strings.Builder, cmds map[string]command) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "  %-26s %s\n", cmds[name].usage, cmds[name].help)
	}
}

func (s *Session) cmdGames(_ context.Context, _ []string) (string, error) {
	var b strings.Builder
	for _, k := range games.Kinds {
		marker := " "
		if k == s.current {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, k)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Session) cmdPlay(_ context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", usage("play <game>")
	}
	kind, err := games.ParseKind(strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	if err := s.play(kind); err != nil {
		return "", err
	}
	return s.status(), nil
}

func (s *Session) cmdLeave(_ context.Context, _ []string) (string, error) {
	s.leave()
	return s.status(), nil
}

func (s *Session) cmdBalance(_ context.Context, _ []string) (string, error) {
	return fmt.Sprintf("Balance: %d chips", s.ledger.Balance()), nil
}

func (s *Session) cmdStatus(_ context.Context, _ []string) (string, error) {
	return s.status(), nil
}

func (s *Session) cmdReset(_ context.Context, _ []string) (string, error) {
	e := s.engine()
	if e == nil {
		return "", fmt.Errorf("%w: no game to reset", games.ErrIllegalAction)
	}
	e.Reset()
	return s.status(), nil
}

func (s *Session) cmdHistory(ctx context.Context, args []string) (string, error) {
	if s.history == nil {
		return "No history is kept", nil
	}
	limit := DefaultHistory
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", usage("history [n]")
		}
		limit = n
	}
	rounds, err := s.history.Recent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if len(rounds) == 0 {
		return "No rounds played yet", nil
	}
	var b strings.Builder
	for _, r := range rounds {
		fmt.Fprintf(&b, "%s  %-9s wager %5d  payout %5d  net %+6d  %s\n",
			r.SettledAt.Local().Format(time.DateTime), r.Game, r.Wager, r.Payout, r.Net(), r.Outcome)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Session) cmdStats(ctx context.Context, _ []string) (string, error) {
	if s.history == nil {
		return "No history is kept", nil
	}
	rounds, err := s.history.Recent(ctx, 0)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if len(rounds) == 0 {
		return "No rounds played yet", nil
	}
	return statistics.Build(rounds).String(), nil
}

func (s *Session) cmdShop(_ context.Context, _ []string) (string, error) {
	owned := s.ledger.Upgrades()
	var b strings.Builder
	for _, item := range ledger.Catalog {
		status := fmt.Sprintf("%d chips", s.prices[item.Upgrade])
		if owned[item.Upgrade] {
			status = "owned"
		}
		fmt.Fprintf(&b, "  %-12s %-11s %s\n", item.Upgrade, status, item.Description)
	}
	fmt.Fprintf(&b, "Balance: %d chips", s.ledger.Balance())
	return b.String(), nil
}

func (s *Session) cmdBuy(_ context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", usage("buy <upgrade>")
	}
	name, err := ledger.ParseUpgrade(strings.Join(args, ""))
	if err != nil {
		return "", err
	}
	price := s.prices[name]
	if err := s.ledger.PurchaseUpgrade(name, price); err != nil {
		s.notify.Notify(err.Error(), notify.Error)
		return "", err
	}
	msg := fmt.Sprintf("Purchased %s for %d chips", name, price)
	s.notify.Notify(msg, notify.Success)
	return msg, nil
}

// betArg parses the amount argument. A malformed amount is reported like any
// other rejected action.
func (s *Session) betArg(args []string, u string) (int, error) {
	if len(args) == 0 {
		return 0, usage(u)
	}
	bet, err := games.ParseBet(args[0])
	if err != nil {
		s.notify.Notify(err.Error(), notify.Error)
		return 0, err
	}
	return bet, nil
}

func (s *Session) bjDeal(args []string) error {
	bet, err := s.betArg(args, "deal <bet>")
	if err != nil {
		return err
	}
	return s.blackjack.Deal(bet)
}

func (s *Session) bjHint(_ context.Context, _ []string) (string, error) {
	stands, err := s.blackjack.Hint()
	if err != nil {
		return "", err
	}
	if stands {
		return "The dealer already stands", nil
	}
	return "The dealer will draw", nil
}

func (s *Session) rouletteSelect(args []string) error {
	if len(args) == 0 {
		return usage("select <bet>...")
	}
	for _, a := range args {
		bet, err := games.ParseRouletteBet(a)
		if err != nil {
			return err
		}
		if err := s.roulette.Select(bet); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) rouletteSpin(args []string) error {
	unit, err := s.betArg(args, "spin <unit>")
	if err != nil {
		return err
	}
	return s.roulette.Spin(unit)
}

func (s *Session) slotsSpin(args []string) error {
	bet, err := s.betArg(args, "spin <bet>")
	if err != nil {
		return err
	}
	return s.slots.Spin(bet)
}

func (s *Session) pokerDeal(args []string) error {
	ante, err := s.betArg(args, "deal <ante>")
	if err != nil {
		return err
	}
	return s.poker.Deal(ante)
}

func (s *Session) fishStart(args []string) error {
	ante, err := s.betArg(args, "start <ante>")
	if err != nil {
		return err
	}
	return s.gofish.Start(ante)
}

func (s *Session) fishAsk(args []string) error {
	if len(args) != 2 {
		return usage("ask <rank> <seat 1-3>")
	}
	rank, err := cards.ParseRank(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", games.ErrIllegalAction, err)
	}
	seat, err := strconv.Atoi(strings.TrimPrefix(args[1], "ai"))
	if err != nil {
		return usage("ask <rank> <seat 1-3>")
	}
	return s.gofish.Ask(rank, seat)
}

func (s *Session) solitaireStart(args []string) error {
	bet, err := s.betArg(args, "start <bet>")
	if err != nil {
		return err
	}
	return s.solitaire.Start(bet)
}

func (s *Session) solitaireMove(args []string) error {
	if len(args) == 0 {
		return usage("move waste|<column 1-7>")
	}
	if args[0] == "waste" || args[0] == "w" {
		return s.solitaire.MoveWasteToFoundation()
	}
	col, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("move waste|<column 1-7>")
	}
	return s.solitaire.MoveColumnToFoundation(col - 1)
}

func (s *Session) solitaireCount(_ context.Context, _ []string) (string, error) {
	counts, err := s.solitaire.Remaining()
	if err != nil {
		return "", err
	}
	var parts []string
	for _, r := range cards.Ranks {
		if n := counts[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", r, n))
		}
	}
	if len(parts) == 0 {
		return "Every card is on a foundation", nil
	}
	return strings.Join(parts, " "), nil
}

func (s *Session) mazeStart(args []string) error {
	if len(args) == 0 {
		return usage("start <difficulty>")
	}
	d, err := games.ParseDifficulty(args[0])
	if err != nil {
		return err
	}
	return s.maze.Start(d)
}

func (s *Session) mazeMove(_ context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", usage("move <direction>")
	}
	dir, err := maze.ParseDirection(args[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", games.ErrIllegalAction, err)
	}
	moved, err := s.maze.Move(dir)
	if err != nil {
		return "", err
	}
	if !moved {
		return "Blocked", nil
	}
	return s.status(), nil
}
