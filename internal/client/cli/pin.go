package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/okazarin/teller/internal/client/pinchange"
)

func stageLabel(stage pinchange.Stage) string {
	switch stage {
	case pinchange.StageCurrentPIN:
		return "Current PIN"
	case pinchange.StageNewPIN:
		return "New PIN"
	default:
		return "Confirm new PIN"
	}
}

// ChangePin drives the PIN-change state machine from the terminal. Each
// input stage reads a PIN without echo and feeds it to the flow digit by
// digit; an empty entry cancels. A transport failure leaves the flow in its
// processing stage and the user chooses whether to resend (with the same
// idempotency key) or walk away.
func (a *App) ChangePin(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Please log in first.")
		return nil
	}

	flow := pinchange.NewFlow(a.gateway, a.auth, a.log, a.identifier)

	for {
		switch flow.Stage() {
		case pinchange.StageCurrentPIN, pinchange.StageNewPIN, pinchange.StageConfirmPIN:
			pin, err := getSecret(stageLabel(flow.Stage()), os.Stdout)
			if err != nil {
				return err
			}
			if len(pin) == 0 {
				flow.Cancel()
				fmt.Println("Cancelled.")
				return nil
			}
			for _, d := range string(pin) {
				flow.Press(d)
			}
			wipeBytes(pin)

			_ = flow.Enter(ctx)
			if flow.Aborted() {
				a.session = nil
				a.identifier = ""
				fmt.Println("Session could not be recovered, please log in again.")
				return flow.LastError()
			}
			if flow.LastError() != nil && flow.Stage() != pinchange.StageProcessing {
				fmt.Println(flow.LastError())
			}

		case pinchange.StageProcessing:
			answer, err := getSimpleText(a.reader, "Network problem. Press Enter to resend, or type 'cancel'", os.Stdout)
			if err != nil {
				return err
			}
			if strings.EqualFold(answer, "cancel") {
				// The request already left; we stop driving the flow and any
				// late response is discarded rather than applied.
				return flow.LastError()
			}
			_ = flow.Enter(ctx)
			if flow.Aborted() {
				a.session = nil
				a.identifier = ""
				fmt.Println("Session could not be recovered, please log in again.")
				return flow.LastError()
			}

		case pinchange.StageSuccess:
			fmt.Println("PIN changed.")
			return nil
		}
	}
}
