package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
)

const exitWord = "sair"

// runQueueMenu handles a ticket that has no queue yet. A single configured
// queue is assigned silently; multiple queues render a numbered menu and wait
// for the contact's pick.
func (s *Service) runQueueMenu(ctx context.Context, in Input) error {
	queues, err := s.queries.ListWhatsappQueues(ctx, in.Wa.ID)
	if err != nil {
		return fmt.Errorf("list queues: %w", err)
	}
	if len(queues) == 0 {
		return nil
	}
	if len(queues) == 1 {
		return s.assignQueue(ctx, in, queues[0])
	}

	body := strings.TrimSpace(in.Body)
	if strings.EqualFold(body, exitWord) {
		return s.finishTicket(ctx, in, true)
	}
	if n, err := strconv.Atoi(body); err == nil && n >= 1 && n <= len(queues) {
		return s.assignQueue(ctx, in, queues[n-1])
	}
	return s.sendQueueMenu(ctx, in, queues)
}

func (s *Service) sendQueueMenu(ctx context.Context, in Input, queues []sqlc.Queue) error {
	var b strings.Builder
	if in.Wa.GreetingMessage != "" {
		b.WriteString(in.Wa.GreetingMessage)
		b.WriteString("\n\n")
	}
	for i, q := range queues {
		fmt.Fprintf(&b, "*[ %d ]* - %s\n", i+1, q.Name)
	}
	b.WriteString("*[ Sair ]* - Encerrar atendimento")
	return s.sendAndPersist(ctx, in, b.String())
}

// assignQueue moves the ticket into a queue, stamps the queued time, delivers
// the queue's greeting and files, and either starts the queue's chatbot
// script or reports the waiting position.
func (s *Service) assignQueue(ctx context.Context, in Input, q sqlc.Queue) error {
	roots, err := s.queries.ListRootChatbotSteps(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("list chatbot roots: %w", err)
	}
	hasBot := len(roots) > 0

	if err := s.queries.UpdateTicketQueue(ctx, sqlc.UpdateTicketQueueParams{
		ID:      in.Ticket.ID,
		QueueID: q.ID,
		Chatbot: hasBot,
	}); err != nil {
		return fmt.Errorf("assign queue: %w", err)
	}
	if err := s.queries.SetTrackingQueued(ctx, sqlc.SetTrackingQueuedParams{
		ID:       in.Tracking.ID,
		QueuedAt: db.PgTime(time.Now()),
	}); err != nil {
		return fmt.Errorf("stamp queued: %w", err)
	}
	in.Ticket.QueueID = q.ID
	in.Ticket.Chatbot = hasBot
	s.emitTicket(in.Ticket, "update")

	if q.CloseTicket {
		return s.finishTicket(ctx, in, true)
	}

	if q.GreetingMessage != "" {
		if err := s.sendAndPersist(ctx, in, q.GreetingMessage); err != nil {
			return err
		}
	}
	files, err := s.queries.ListQueueFiles(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("list queue files: %w", err)
	}
	for _, f := range files {
		if err := s.sendStoredFile(ctx, in, f.FileName, f.FilePath); err != nil {
			s.logger.Warn("failed to send queue file",
				slog.String("file", f.FileName),
				slog.Any("error", err))
		}
	}

	if hasBot {
		return s.sendStepMenu(ctx, in, roots)
	}
	return s.sendQueuePosition(ctx, in, q)
}

func (s *Service) sendQueuePosition(ctx context.Context, in Input, q sqlc.Queue) error {
	count, err := s.queries.CountPendingQueueTickets(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("count queue position: %w", err)
	}
	if count <= 0 {
		count = 1
	}
	return s.sendAndPersist(ctx, in,
		fmt.Sprintf("Você está na posição %d da fila *%s*. Aguarde, em breve será atendido.", count, q.Name))
}
