package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

const (
	publicHelp = `Available commands:
/start - Greeting
/help - Show this message`

	adminHelp = `Available commands:
/student add <id> <group> <name> - Add a student
/student list - List students
/student delete <id> - Delete a student
/assignment add <id> <deadline> <startline> <description> - Add an assignment
/assignment list - List assignments
/assignment extend <id> <weeks> - Extend a deadline if it has not passed
/grade add <student> <assignment> <value> <week> [feedback] - Grade a submission
/grade list - List grades
/grade report <student> <assignment> - Append a grade to the student report
/token - Get a token for the HTTP API
/token revoke - Drop your HTTP API token
/help - Show this message

Examples:
/student add s1 221 Ana Popescu
/assignment add t1 12 10 Linked lists
/grade add s1 t1 8.5 11 nice work`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routePublicCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start": b.handleStart,
		"help":  b.handleHelp,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"student":    b.handleStudent,
		"assignment": b.handleAssignment,
		"grade":      b.handleGrade,
		"token":      b.handleToken,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routePublicCommands(cmd); ok {
		b.run(handler, msg)
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			b.run(handler, msg)
			return
		}
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) run(handler commandHandler, msg *tgbotapi.Message) {
	if err := handler(msg); err != nil {
		logger.Error.Printf("Command error: %v", err)
		b.sendMessage(msg.Chat.ID, describeError(err))
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, validation.ErrValidation):
		return "❌ Invalid data:\n" + err.Error()
	case errors.Is(err, store.ErrAlreadyExists):
		return "❌ Already exists: " + err.Error()
	case errors.Is(err, app.ErrGradeReferenceNotFound):
		return "❌ " + err.Error()
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = publicHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Use commands to talk to the bot. Send /help for the list.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Hi! I keep the course gradebook.\n\n"
	if b.admins[msg.From.ID] {
		text += "You are a course admin. Use /help for the list of commands."
	} else {
		text += "Only course admins can change the gradebook."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	if b.tokens == nil {
		return b.sendMessage(msg.Chat.ID, "API auth is disabled, no token needed.")
	}

	user := strconv.FormatInt(msg.From.ID, 10)

	if strings.TrimSpace(msg.CommandArguments()) == "revoke" {
		if err := b.tokens.RevokeToken(context.Background(), user); err != nil {
			return err
		}
		logger.Info.Printf("Revoked API token of user %s", user)
		return b.sendMessage(msg.Chat.ID, "🗑 Token revoked. Send /token for a new one.")
	}

	info, created, err := b.tokens.FetchOrCreateToken(context.Background(), user)
	if err != nil {
		return fmt.Errorf("failed to fetch token: %w", err)
	}

	text := fmt.Sprintf("Your token (user %s):\n%s\nRequests so far: %d", info.User, info.Token, info.RequestCount)
	if created {
		text = "🔑 New token issued.\n" + text
	}
	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleStudent(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage:\n"+
			"/student add <id> <group> <name>\n"+
			"/student list\n"+
			"/student delete <id>")
	}

	switch args[0] {
	case "add":
		if len(args) < 4 {
			return fmt.Errorf("usage: /student add <id> <group> <name>")
		}
		group, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid group %q: %v", args[2], err)
		}
		name := strings.Join(args[3:], " ")
		if err := b.service.SaveStudent(args[1], name, group); err != nil {
			return err
		}
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Student %s (%s, group %d) added", args[1], name, group))
	case "list":
		return b.handleStudentList(msg.Chat.ID)
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: /student delete <id>")
		}
		code, err := b.service.DeleteStudent(args[1])
		if err != nil {
			return err
		}
		if code == 0 {
			return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Student %s not found", args[1]))
		}
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Student %s deleted", args[1]))
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (b *Bot) handleStudentList(chatID int64) error {
	students, err := b.service.FindAllStudents()
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}
	if len(students) == 0 {
		return b.sendMessage(chatID, "No students yet")
	}

	var sb strings.Builder
	sb.WriteString("Students:\n")
	for _, s := range students {
		fmt.Fprintf(&sb, "• %s %s, group %d\n", s.ID, s.Name, s.Group)
	}
	return b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleAssignment(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage:\n"+
			"/assignment add <id> <deadline> <startline> <description>\n"+
			"/assignment list\n"+
			"/assignment extend <id> <weeks>")
	}

	switch args[0] {
	case "add":
		if len(args) < 5 {
			return fmt.Errorf("usage: /assignment add <id> <deadline> <startline> <description>")
		}
		deadline, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid deadline %q: %v", args[2], err)
		}
		startline, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid startline %q: %v", args[3], err)
		}
		description := strings.Join(args[4:], " ")
		if err := b.service.SaveAssignment(args[1], description, deadline, startline); err != nil {
			return err
		}
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Assignment %s added:\nWeeks: %d → %d\n%s", args[1], startline, deadline, description))
	case "list":
		return b.handleAssignmentList(msg.Chat.ID)
	case "extend":
		if len(args) < 3 {
			return fmt.Errorf("usage: /assignment extend <id> <weeks>")
		}
		weeks, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid number of weeks %q: %v", args[2], err)
		}
		code, err := b.service.ExtendDeadline(args[1], weeks)
		if err != nil {
			return err
		}
		if code == 0 {
			return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
				"Deadline of %s not extended: no such assignment or it already passed (current week %d)",
				args[1], b.service.CurrentWeek()))
		}
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("⏳ Deadline of %s extended by %d weeks", args[1], weeks))
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (b *Bot) handleAssignmentList(chatID int64) error {
	assignments, err := b.service.FindAllAssignments()
	if err != nil {
		return fmt.Errorf("failed to list assignments: %w", err)
	}
	if len(assignments) == 0 {
		return b.sendMessage(chatID, "No assignments yet")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Assignments (current week %d):\n", b.service.CurrentWeek())
	for _, a := range assignments {
		fmt.Fprintf(&sb, "• %s: %s, weeks %d → %d\n", a.ID, a.Description, a.Startline, a.Deadline)
	}
	return b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleGrade(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage:\n"+
			"/grade add <student> <assignment> <value> <week> [feedback]\n"+
			"/grade list\n"+
			"/grade report <student> <assignment>")
	}

	switch args[0] {
	case "add":
		if len(args) < 5 {
			return fmt.Errorf("usage: /grade add <student> <assignment> <value> <week> [feedback]")
		}
		value, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid grade %q: %v", args[3], err)
		}
		week, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("invalid week %q: %v", args[4], err)
		}
		feedback := strings.Join(args[5:], " ")
		if err := b.service.SaveGrade(args[1], args[2], value, week, feedback); err != nil {
			return err
		}
		grade, err := b.service.FindGrade(args[1], args[2])
		if err != nil {
			return err
		}
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Grade for %s stored: %g", grade.GradeKey, grade.Value))
	case "list":
		return b.handleGradeList(msg.Chat.ID)
	case "report":
		if len(args) < 3 {
			return fmt.Errorf("usage: /grade report <student> <assignment>")
		}
		path, err := b.service.WriteGradeReport(args[1], args[2])
		if err != nil {
			return err
		}
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("📄 Report updated: %s", path))
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (b *Bot) handleGradeList(chatID int64) error {
	grades, err := b.service.FindAllGrades()
	if err != nil {
		return fmt.Errorf("failed to list grades: %w", err)
	}
	if len(grades) == 0 {
		return b.sendMessage(chatID, "No grades yet")
	}

	var sb strings.Builder
	sb.WriteString("Grades:\n")
	for _, g := range grades {
		fmt.Fprintf(&sb, "• %s: %g (week %d)", g.GradeKey, g.Value, g.SubmittedWeek)
		if g.Feedback != "" {
			fmt.Fprintf(&sb, " %s", g.Feedback)
		}
		sb.WriteString("\n")
	}
	return b.sendMessage(chatID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.sender.Send(msg)
	return err
}
