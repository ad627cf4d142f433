package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/park285/cheese-match/internal/matchclient"
	"github.com/park285/cheese-match/pkg/chessdto"
)

func main() {
	baseURL := getenv("MATCH_BASE_URL", "http://localhost:8080")
	wsURL := getenv("MATCH_WS_URL", "ws://localhost:8081")
	matchID := os.Getenv("MATCH_ID")
	player := getenv("MATCH_PLAYER", "matchcheck")
	window := 10 * time.Second
	if v, err := strconv.Atoi(os.Getenv("WATCH_SECONDS")); err == nil && v > 0 {
		window = time.Duration(v) * time.Second
	}

	client := matchclient.NewClient(baseURL, matchclient.WithTimeout(8*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var dto *chessdto.MatchDto
	if matchID == "" {
		created, err := client.CreateMatch(ctx, player)
		if err != nil {
			log.Fatalf("create match error: %v", err)
		}
		dto = created.Match
		log.Printf("created match %s, %s plays %s", dto.ID, player, created.Team)
	} else {
		got, err := client.Get(ctx, matchID)
		if err != nil {
			log.Fatalf("get match error: %v", err)
		}
		dto = got
	}
	show(dto)

	w := matchclient.NewWatcher(wsURL, dto.ID, 5)
	w.OnStateChange(func(s matchclient.State) {
		log.Printf("WS state: %s", s)
	})
	w.OnUpdate(show)

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := w.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}

	// Observe for a short window
	t := time.NewTimer(window)
	<-t.C

	_ = w.Close(context.Background())
}

func show(dto *chessdto.MatchDto) {
	color.New(color.FgCyan).Printf("%s  %s\n", dto.ID, matchclient.Summary(dto))
	fmt.Print(matchclient.FormatBoard(dto))
	fmt.Println(dto.FEN)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
