// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package console is a line-oriented transport for operating the bot from
// a terminal. Chat lines go through the command dispatcher exactly as a
// chat platform adapter would send them; lines starting with "/" are
// transport events (switching identity, simulating joins, kicks, and mutes).
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/observability"
)

const transportName = "console"

// Message kinds for the messages counter.
const (
	kindCommand = "command"
	kindChat    = "chat"
	kindEvent   = "event"
)

// Roles tracks which users the console treats as group administrators.
// It implements bot.RoleChecker.
type Roles struct {
	mu     sync.RWMutex
	admins map[[2]string]bool
}

// NewRoles returns an empty role table.
func NewRoles() *Roles {
	return &Roles{admins: make(map[[2]string]bool)}
}

// Set marks or unmarks userID as an administrator of groupID.
func (r *Roles) Set(groupID, userID string, admin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if admin {
		r.admins[[2]string{groupID, userID}] = true
		return
	}
	delete(r.admins, [2]string{groupID, userID})
}

// IsGroupAdmin reports whether userID administers groupID.
func (r *Roles) IsGroupAdmin(_ context.Context, groupID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admins[[2]string{groupID, userID}], nil
}

// Option configures a Session.
type Option func(*Session)

// WithMetrics counts inbound lines on m.MessagesTotal.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session is one operator's console conversation with the bot.
type Session struct {
	dispatcher *command.Dispatcher
	services   *command.Services
	roles      *Roles
	actor      identity.Actor
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a session speaking as actor.
func New(d *command.Dispatcher, services *command.Services, roles *Roles, actor identity.Actor, opts ...Option) *Session {
	s := &Session{
		dispatcher: d,
		services:   services,
		roles:      roles,
		actor:      actor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Actor returns the identity lines are currently sent as.
func (s *Session) Actor() identity.Actor { return s.actor }

// Run reads lines from in until EOF, "/quit", or ctx is done, writing
// replies to out.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			s.count(kindEvent)
			quit, err := s.event(ctx, line, out)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}
		if err := s.chat(ctx, line, out); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return oops.Code("CONSOLE_READ_FAILED").Wrap(err)
	}
	return nil
}

func (s *Session) count(kind string) {
	if s.metrics != nil {
		s.metrics.MessagesTotal.WithLabelValues(transportName, kind).Inc()
	}
}

func (s *Session) chat(ctx context.Context, line string, out io.Writer) error {
	exec := &command.CommandExecution{
		Actor:    s.actor,
		Output:   out,
		Services: s.services,
	}
	err := s.dispatcher.Dispatch(ctx, line, exec)
	switch {
	case command.IsNotACommand(err):
		s.count(kindChat)
		return nil
	case err != nil:
		s.count(kindCommand)
		return s.printf(out, "%s\n", command.PlayerMessage(err))
	}
	s.count(kindCommand)

	if exec.LeaveGroupID != "" {
		if err := s.printf(out, "[left group %s]\n", exec.LeaveGroupID); err != nil {
			return err
		}
		if exec.LeaveGroupID == s.actor.GroupID {
			s.actor.GroupID = ""
		}
	}
	return nil
}

const eventHelp = `Console events:
  /as <user-id> [name]   speak as another user
  /group [group-id]      move into a group (no id: private chat)
  /admin on|off          toggle group administrator for the current user
  /join                  the current user invites the bot into the current group
  /welcome               the current user joins the current group
  /kicked [operator-id]  the bot is kicked from the current group
  /muted [operator-id]   the bot is muted in the current group
  /whoami                show the current identity
  /quit                  leave the console`

func (s *Session) event(ctx context.Context, line string, out io.Writer) (quit bool, err error) {
	name, rest := command.SplitFirst(strings.TrimPrefix(line, "/"))
	name = strings.ToLower(name)
	svc := s.services.Bot

	switch name {
	case "quit", "exit":
		return true, nil

	case "help":
		return false, s.printf(out, "%s\n", eventHelp)

	case "whoami":
		return false, s.printf(out, "%s\n", describe(s.actor))

	case "as":
		id, username := command.SplitFirst(rest)
		if id == "" {
			return false, s.printf(out, "Usage: /as <user-id> [name]\n")
		}
		s.actor.UserID, s.actor.Username = id, username
		return false, s.printf(out, "%s\n", describe(s.actor))

	case "group":
		s.actor.GroupID = strings.TrimSpace(rest)
		return false, s.printf(out, "%s\n", describe(s.actor))

	case "admin":
		if s.actor.GroupID == "" {
			return false, s.printf(out, "Not in a group.\n")
		}
		on := !strings.EqualFold(strings.TrimSpace(rest), "off")
		s.roles.Set(s.actor.GroupID, s.actor.UserID, on)
		return false, s.printf(out, "[admin %t for %s in %s]\n", on, s.actor.UserID, s.actor.GroupID)

	case "join":
		if s.actor.GroupID == "" {
			return false, s.printf(out, "Not in a group.\n")
		}
		decision, err := svc.CheckJoin(ctx, s.actor)
		if err != nil {
			return false, s.fail(ctx, out, "join", err)
		}
		return false, s.printf(out, "[invitation to %s: %s]\n", s.actor.GroupID, decision)

	case "welcome":
		msg, ok, err := svc.Welcome(ctx, s.actor)
		if err != nil {
			return false, s.fail(ctx, out, "welcome", err)
		}
		if !ok {
			return false, nil
		}
		return false, s.printf(out, "%s\n", msg)

	case "kicked", "muted":
		operator := strings.TrimSpace(rest)
		if operator == "" {
			operator = s.actor.UserID
		}
		banFn := svc.BanForKicked
		if name == "muted" {
			banFn = svc.BanForMuted
		}
		banned, err := banFn(ctx, s.actor.GroupID, operator)
		if err != nil {
			return false, s.fail(ctx, out, name, err)
		}
		if !banned {
			return false, s.printf(out, "[%s: kill switch off, nothing banned]\n", name)
		}
		return false, s.printf(out, "[%s: group %s banned]\n", name, s.actor.GroupID)
	}

	return false, s.printf(out, "Unknown console event. Try /help.\n")
}

func (s *Session) fail(ctx context.Context, out io.Writer, event string, err error) error {
	s.logger.WarnContext(ctx, "console event failed", "event", event, "error", err)
	return s.printf(out, "Something went wrong. Try again.\n")
}

func (s *Session) printf(out io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(out, format, args...); err != nil {
		return oops.Code("CONSOLE_WRITE_FAILED").Wrap(err)
	}
	return nil
}

func describe(a identity.Actor) string {
	where := "private chat"
	if a.GroupID != "" {
		where = "group " + a.GroupID
	}
	name := a.Username
	if name == "" {
		name = a.UserID
	}
	return fmt.Sprintf("[%s (%s) in %s]", name, a.UserID, where)
}
