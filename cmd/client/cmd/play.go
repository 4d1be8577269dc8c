package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YoungCoderboy/chessme-copy/internal/chessrules"
	"github.com/YoungCoderboy/chessme-copy/internal/client"
	"github.com/YoungCoderboy/chessme-copy/internal/client/rtc"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room, print its id and wait for an opponent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate()
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <room-id>",
	Short: "Join an existing room as the black player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJoin(domain.RoomID(args[0]))
	},
}

// connect dials the server, waits for the assigned connection id and
// asserts the username.
func connect() (*client.Transport, *client.Handler, domain.ConnID, error) {
	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	t := client.NewTransport(flagServer)
	if err := t.Connect(); err != nil {
		return nil, nil, "", err
	}
	h := client.NewHandler(t)
	go h.Run()

	self, ok := <-h.Connected
	if !ok {
		return nil, nil, "", fmt.Errorf("connection closed before welcome")
	}
	if err := t.SendUsername(flagUsername); err != nil {
		return nil, nil, "", err
	}
	return t, h, self, nil
}

func newSession(self domain.ConnID, t *client.Transport) (*client.Session, error) {
	media, err := client.NewStaticMedia("chessme-" + string(self))
	if err != nil {
		return nil, err
	}
	newLink := func() (client.PeerLink, error) {
		return rtc.New(rtc.Config(nil))
	}
	return client.NewSession(self, media, t, newLink), nil
}

func runCreate() error {
	t, h, self, err := connect()
	if err != nil {
		return err
	}
	defer t.Close()

	if err := t.SendCreateRoom(); err != nil {
		return err
	}
	roomID := <-h.RoomCreated
	fmt.Printf("room created: %s\n", roomID)
	fmt.Println("waiting for an opponent...")

	sess, err := newSession(self, t)
	if err != nil {
		return err
	}
	h.BindSession(sess)
	defer sess.Close()

	game := client.NewGame(roomID, chessrules.White, 1, t)

	// The joiner initiates the call; the creator answers the incoming
	// offer through the bound session.
	snap := <-h.OpponentJoined
	game.SetPlayerCount(len(snap.Players))
	for _, p := range snap.Players {
		if p.ID != self {
			fmt.Printf("%s joined, game on. You play white.\n", p.Username)
		}
	}
	return gameLoop(t, h, sess, game)
}

func runJoin(roomID domain.RoomID) error {
	t, h, self, err := connect()
	if err != nil {
		return err
	}
	defer t.Close()

	if err := t.SendJoinRoom(roomID); err != nil {
		return err
	}
	var snap domain.RoomSnapshot
	select {
	case snap = <-h.RoomJoined:
	case e := <-h.Errors:
		return fmt.Errorf("join failed: %s", e.Message)
	}

	sess, err := newSession(self, t)
	if err != nil {
		return err
	}
	h.BindSession(sess)
	defer sess.Close()

	game := client.NewGame(roomID, chessrules.Black, len(snap.Players), t)
	fmt.Println("joined, you play black.")

	// Second joiner discovers the existing occupant and initiates.
	for _, p := range snap.Players {
		if p.ID != self {
			if err := sess.Call(p.ID); err != nil {
				fmt.Printf("media negotiation failed (game continues): %v\n", err)
			}
		}
	}
	return gameLoop(t, h, sess, game)
}

// gameLoop multiplexes stdin moves with server events until the game
// reaches a terminal state or the room goes away.
func gameLoop(t *client.Transport, h *client.Handler, sess *client.Session, game *client.Game) error {
	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- strings.TrimSpace(scanner.Text())
		}
		close(input)
	}()

	fmt.Println(`moves as "e2e4" (promotion: "e7e8q"), chat with /say, quit with /quit`)
	for {
		select {
		case line, ok := <-input:
			if !ok {
				return nil
			}
			if done, err := handleInput(t, game, line); done {
				return err
			}
			if over := checkOutcome(t, sess, game); over {
				return nil
			}
		case mv := <-h.Moves:
			if game.ApplyRemoteMove(mv) {
				fmt.Printf("opponent: %s%s  (%s)\n", mv.From, mv.To, game.FEN())
			}
			if over := checkOutcome(t, sess, game); over {
				return nil
			}
		case c := <-h.Chat:
			fmt.Printf("[chat] %s\n", c.Message)
		case p := <-h.PlayerDisconnected:
			// The game cannot continue; close the room like the dialog
			// acknowledgment does.
			fmt.Printf("%s has disconnected\n", p.Username)
			_ = t.SendCloseRoom(game.Room())
			sess.Close()
			return nil
		case <-h.RoomClosed:
			fmt.Println("room closed")
			sess.Close()
			return nil
		case snap := <-h.OpponentJoined:
			game.SetPlayerCount(len(snap.Players))
		}
	}
}

func handleInput(t *client.Transport, game *client.Game, line string) (bool, error) {
	switch {
	case line == "":
		return false, nil
	case line == "/quit":
		_ = t.SendCloseRoom(game.Room())
		return true, nil
	case strings.HasPrefix(line, "/say "):
		return false, t.SendChat(game.Room(), strings.TrimPrefix(line, "/say "))
	case len(line) >= 4 && len(line) <= 5:
		from, to, promo := line[:2], line[2:4], ""
		if len(line) == 5 {
			promo = line[4:]
		}
		if mv, ok := game.AttemptLocalMove(from, to, promo); ok {
			fmt.Printf("you: %s%s  (%s)\n", mv.From, mv.To, game.FEN())
		} else {
			fmt.Println("move rejected")
		}
		return false, nil
	default:
		fmt.Println("unrecognized input")
		return false, nil
	}
}

func checkOutcome(t *client.Transport, sess *client.Session, game *client.Game) bool {
	out := game.Outcome()
	if out.Result == chessrules.ResultNone {
		return false
	}
	fmt.Println(out.Message())
	_ = t.SendCloseRoom(game.Room())
	sess.Close()
	return true
}
