package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/okazarin/teller/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	if a.session != nil {
		s = a.session.Identity.DisplayName
		if exp, ok := session.ExpiresAt(context.Background(), a.store); ok && time.Until(exp) < time.Minute {
			s += " expiring"
		}
	}
	if a.Mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to teller (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	for {
		fmt.Printf("teller %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: deposit, withdraw, transfer, balance, history, changepin, logout, exit")
			} else {
				fmt.Println("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "deposit":
			_ = a.Deposit(ctx)
		case "withdraw":
			_ = a.Withdraw(ctx)
		case "transfer":
			_ = a.Transfer(ctx)
		case "balance":
			_ = a.Balance(ctx)
		case "history":
			_ = a.History(ctx)
		case "changepin":
			_ = a.ChangePin(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
