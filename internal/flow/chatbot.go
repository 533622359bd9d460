package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
)

const mainMenuWord = "#"

// runChatbot advances the queue's scripted menu tree. The contact navigates
// by replying with an option number; "#" returns to the root menu and "sair"
// ends the conversation.
func (s *Service) runChatbot(ctx context.Context, in Input) error {
	if !in.Ticket.Chatbot {
		return nil
	}
	body := strings.TrimSpace(in.Body)
	contactID := in.Ticket.ContactID

	if strings.EqualFold(body, exitWord) {
		if err := s.queries.DeleteChatbotState(ctx, contactID); err != nil {
			return fmt.Errorf("reset chatbot state: %w", err)
		}
		return s.finishTicket(ctx, in, true)
	}

	var parent pgtype.UUID
	if body == mainMenuWord {
		if err := s.queries.DeleteChatbotState(ctx, contactID); err != nil {
			return fmt.Errorf("reset chatbot state: %w", err)
		}
	} else {
		state, err := s.queries.GetChatbotState(ctx, contactID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("load chatbot state: %w", err)
		}
		if err == nil {
			if _, serr := s.queries.GetChatbotStep(ctx, state.StepID); serr != nil {
				if !errors.Is(serr, pgx.ErrNoRows) {
					return fmt.Errorf("load chatbot step: %w", serr)
				}
				// The saved step was removed from the tree; restart at the root.
				if derr := s.queries.DeleteChatbotState(ctx, contactID); derr != nil {
					return fmt.Errorf("reset chatbot state: %w", derr)
				}
			} else {
				parent = state.StepID
			}
		}
	}

	options, err := s.stepOptions(ctx, in.Ticket.QueueID, parent)
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return nil
	}

	if body == mainMenuWord {
		return s.sendStepMenu(ctx, in, options)
	}
	n, err := strconv.Atoi(body)
	if err != nil || n < 1 || n > len(options) {
		return s.sendStepMenu(ctx, in, options)
	}
	return s.applyStep(ctx, in, options[n-1])
}

func (s *Service) stepOptions(ctx context.Context, queueID, parent pgtype.UUID) ([]sqlc.ChatbotStep, error) {
	if parent.Valid {
		options, err := s.queries.ListChildChatbotSteps(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("list chatbot children: %w", err)
		}
		return options, nil
	}
	options, err := s.queries.ListRootChatbotSteps(ctx, queueID)
	if err != nil {
		return nil, fmt.Errorf("list chatbot roots: %w", err)
	}
	return options, nil
}

// applyStep delivers the chosen step's content and runs its action: transfer
// to another queue, assign an agent, close, or descend into its submenu.
func (s *Service) applyStep(ctx context.Context, in Input, step sqlc.ChatbotStep) error {
	if step.Message != "" {
		if err := s.sendAndPersist(ctx, in, step.Message); err != nil {
			return err
		}
	}
	if step.FilePath != "" {
		if err := s.sendStoredFile(ctx, in, filepath.Base(step.FilePath), step.FilePath); err != nil {
			s.logger.Warn("failed to send step file",
				slog.String("file", step.FilePath),
				slog.Any("error", err))
		}
	}

	switch {
	case step.TransferQueueID.Valid:
		q, err := s.queries.GetQueue(ctx, step.TransferQueueID)
		if err != nil {
			return fmt.Errorf("load transfer queue: %w", err)
		}
		if err := s.queries.DeleteChatbotState(ctx, in.Ticket.ContactID); err != nil {
			return fmt.Errorf("reset chatbot state: %w", err)
		}
		return s.assignQueue(ctx, in, q)

	case step.AssignUserID.Valid:
		if err := s.queries.UpdateTicketUser(ctx, sqlc.UpdateTicketUserParams{
			ID:     in.Ticket.ID,
			UserID: step.AssignUserID,
			Status: "open",
		}); err != nil {
			return fmt.Errorf("assign agent: %w", err)
		}
		if err := s.queries.SetTrackingStarted(ctx, sqlc.SetTrackingStartedParams{
			ID:        in.Tracking.ID,
			StartedAt: db.PgTime(time.Now()),
			UserID:    step.AssignUserID,
		}); err != nil {
			return fmt.Errorf("stamp started: %w", err)
		}
		if err := s.queries.DeleteChatbotState(ctx, in.Ticket.ContactID); err != nil {
			return fmt.Errorf("reset chatbot state: %w", err)
		}
		s.emitTicket(in.Ticket, "update")
		return nil

	case step.CloseTicket:
		if err := s.queries.DeleteChatbotState(ctx, in.Ticket.ContactID); err != nil {
			return fmt.Errorf("reset chatbot state: %w", err)
		}
		return s.finishTicket(ctx, in, true)
	}

	children, err := s.queries.ListChildChatbotSteps(ctx, step.ID)
	if err != nil {
		return fmt.Errorf("list chatbot children: %w", err)
	}
	if len(children) > 0 {
		if err := s.queries.UpsertChatbotState(ctx, sqlc.UpsertChatbotStateParams{
			ContactID: in.Ticket.ContactID,
			CompanyID: in.Wa.CompanyID,
			StepID:    step.ID,
			Awaiting:  true,
		}); err != nil {
			return fmt.Errorf("save chatbot state: %w", err)
		}
		return s.sendStepMenu(ctx, in, children)
	}

	// Informational leaf: the next reply starts over from the root.
	if err := s.queries.DeleteChatbotState(ctx, in.Ticket.ContactID); err != nil {
		return fmt.Errorf("reset chatbot state: %w", err)
	}
	return nil
}
