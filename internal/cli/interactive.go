package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/farmease/farmease-ai/internal/assistant"
	"github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/voice"
)

const helpText = `Commands:
  /mic          transcribe the --audio clip and send it
  /speak [N]    read the Nth message aloud (default: latest reply)
  /stop         stop reading aloud
  /clear        start over
  /quit         leave`

const ownQuestion = "Type my own question"

func runInteractive(cmd *cobra.Command, opts *options, audioFile string) error {
	out := cmd.OutOrStdout()
	client := opts.client()
	sess := opts.session(client, audioFile, false)
	defer sess.Close(context.Background())

	fmt.Fprintln(out, titleStyle.Render("FarmEase AI"))
	fmt.Fprintln(out, noteStyle.Render("backend: "+client.BaseURL()+"  (type /help for commands)"))
	printMessages(out, sess.Messages())

	for {
		text, err := promptMessage(sess)
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := handleInput(cmd, sess, text)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
		if quit {
			return nil
		}
	}
}

func promptMessage(sess *assistant.Session) (string, error) {
	var text string
	if sess.ShowSuggestions() {
		choice := ""
		choices := append(append([]string{}, assistant.Suggestions...), ownQuestion)
		if err := survey.AskOne(&survey.Select{Message: "Try asking:", Options: choices}, &choice); err != nil {
			return "", err
		}
		if choice != ownQuestion {
			return choice, nil
		}
	}
	err := survey.AskOne(&survey.Input{
		Message: "You:",
		Help:    "Ask about crops, diseases, fertilizers, irrigation or schemes. /help lists commands.",
	}, &text)
	return strings.TrimSpace(text), err
}

// handleInput runs one line of input and reports whether to quit.
func handleInput(cmd *cobra.Command, sess *assistant.Session, text string) (bool, error) {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	switch {
	case text == "":
		return false, nil
	case text == "/quit" || text == "/exit":
		return true, nil
	case text == "/help":
		fmt.Fprintln(out, noteStyle.Render(helpText))
		return false, nil
	case text == "/clear":
		msg := sess.Clear()
		printMessages(out, []chat.Message{msg})
		return false, nil
	case text == "/stop":
		sess.Voice().StopSpeaking()
		return false, nil
	case text == "/mic":
		return false, askByVoice(cmd, sess)
	case strings.HasPrefix(text, "/speak"):
		return false, speakMessage(sess, strings.TrimSpace(strings.TrimPrefix(text, "/speak")))
	}

	reply, err := sess.Send(ctx, text)
	if err != nil {
		return false, err
	}
	fmt.Fprintln(out, renderMessage(reply, sess.Offline()))
	return false, nil
}

func askByVoice(cmd *cobra.Command, sess *assistant.Session) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if err := sess.StartRecording(ctx); err != nil {
		return alertError(err)
	}
	fmt.Fprintln(out, noteStyle.Render("🎤 recording..."))

	transcript, err := sess.StopRecording(ctx, false)
	if transcript != "" {
		fmt.Fprintln(out, userStyle.Render("You (voice): ")+transcript)
	}
	if err != nil {
		return alertError(err)
	}

	if reply, ok := sess.Latest(); ok && reply.Role == chat.RoleAssistant {
		fmt.Fprintln(out, renderMessage(reply, sess.Offline()))
	}
	return nil
}

func speakMessage(sess *assistant.Session, arg string) error {
	msgs := sess.Messages()
	target := -1
	if arg == "" {
		for i := len(msgs) - 1; i >= 0; i-- {
			if msgs[i].Role == chat.RoleAssistant {
				target = i
				break
			}
		}
	} else {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(msgs) {
			return fmt.Errorf("no message %q", arg)
		}
		target = n - 1
	}
	if target < 0 {
		return fmt.Errorf("nothing to read aloud")
	}
	_, err := sess.Speak(msgs[target].ID)
	return err
}

func waitForSpeech(ctx context.Context, sess *assistant.Session) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for sess.Voice().Speaking() != "" {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func alertError(err error) error {
	title, message := voice.Alert(err)
	if title == "" {
		return err
	}
	return fmt.Errorf("%s: %s", title, message)
}
