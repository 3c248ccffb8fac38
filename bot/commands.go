package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelsied/gptgames-bot/db"
	"github.com/kelsied/gptgames-bot/quiz"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const (
	gameTrivia        = "trivia"
	gameMedicalTrivia = "medical-trivia"

	questionColor = 0x00ff00 // Green sidebar
)

func (b *Bot) handleChat(s *discordgo.Session, m *discordgo.MessageCreate, input string, quote bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		s.ChannelMessageSendReply(m.ChannelID, "Tell me something to respond to, e.g. `!chat how are you?`", m.Reference())
		return
	}
	log.WithFields(log.Fields{"user": m.Author.Username}).Info("Chat command")

	s.ChannelTyping(m.ChannelID)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	reply, err := b.complete(ctx, input)
	if err != nil {
		log.WithError(err).Error("Chat completion failed")
		s.ChannelMessageSendReply(m.ChannelID, "Sorry, I couldn't process your request. Please try again.", m.Reference())
		return
	}
	if quote {
		reply = fmt.Sprintf("> %s\n%s", input, reply)
	}
	s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference())
}

func (b *Bot) complete(ctx context.Context, input string) (string, error) {
	resp, err := b.LLM.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.Config.Model,
		MaxTokens:   b.Config.MaxTokens,
		Temperature: b.Config.Temperature,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: input,
		}},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (b *Bot) handleGames(s *discordgo.Session, m *discordgo.MessageCreate) {
	menuID := "select-game:" + uuid.NewString()
	ch := b.collectors.arm(menuID, m.Author.ID)

	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:    "Select a game to play!",
		Components: []discordgo.MessageComponent{actionsRow(gameMenu(menuID))},
		Reference:  m.Reference(),
	})
	if err != nil {
		b.collectors.disarm(menuID)
		log.WithError(err).Error("Failed to send games menu")
		return
	}
	log.WithFields(log.Fields{"user": m.Author.Username}).Info("Sent games menu")

	go b.collectGameChoice(s, m.ChannelID, m.Author.ID, m.Author.Username, menuID, ch)
}

func (b *Bot) handleGamesSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ownerID := interactionUserID(i)
	menuID := "select-game:" + uuid.NewString()
	ch := b.collectors.arm(menuID, ownerID)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Select a game to play!",
			Components: []discordgo.MessageComponent{actionsRow(gameMenu(menuID))},
		},
	})
	if err != nil {
		b.collectors.disarm(menuID)
		log.WithError(err).Error("Failed to respond to /games")
		return
	}
	log.WithFields(log.Fields{"user": interactionUsername(i)}).Info("Sent games menu (slash)")

	go b.collectGameChoice(s, i.ChannelID, ownerID, interactionUsername(i), menuID, ch)
}

func (b *Bot) collectGameChoice(s *discordgo.Session, channelID, ownerID, ownerName, menuID string, ch <-chan componentEvent) {
	ev, ok := b.collectors.await(menuID, ch, b.Config.SelectTimeout)
	if !ok {
		s.ChannelMessageSend(channelID, "Game selection timed out. Use `!games` to try again.")
		return
	}

	switch ev.Value {
	case gameTrivia:
		log.WithFields(log.Fields{"user": ownerName, "game": gameTrivia}).Info("Game selected")
		respondClosed(s, ev.Interaction, fmt.Sprintf("You selected Trivia! Generating %d questions...", b.Config.QuestionCount))
		b.runQuiz(s, channelID, ownerID, ownerName, "Trivia", nil)
	case gameMedicalTrivia:
		log.WithFields(log.Fields{"user": ownerName, "game": gameMedicalTrivia}).Info("Game selected")
		b.runMedicalSelection(s, channelID, ownerID, ownerName, ev.Interaction)
	default:
		respondClosed(s, ev.Interaction, "That game isn't available yet.")
	}
}

// runMedicalSelection walks the subject then topic pickers and, once both
// resolve, starts a quiz scoped to the chosen topic. An expired picker
// abandons the flow with a notice.
func (b *Bot) runMedicalSelection(s *discordgo.Session, channelID, ownerID, ownerName string, i *discordgo.InteractionCreate) {
	flow := quiz.NewSelectionFlow(ownerID)
	flowID := uuid.NewString()

	subjectID := "medquiz-subject:" + flowID
	subjCh := b.collectors.arm(subjectID, ownerID)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Medical Trivia! First, pick a subject:",
			Components: []discordgo.MessageComponent{actionsRow(subjectMenu(subjectID))},
		},
	})
	if err != nil {
		b.collectors.disarm(subjectID)
		log.WithError(err).Error("Failed to send subject menu")
		return
	}

	subjEv, ok := b.collectors.await(subjectID, subjCh, b.Config.SelectTimeout)
	if !ok {
		s.ChannelMessageSend(channelID, "Subject selection timed out. Use `!games` to try again.")
		return
	}
	topics, ok := flow.ChooseSubject(subjEv.ActorID, quiz.Subject(subjEv.Value))
	if !ok {
		respondClosed(s, subjEv.Interaction, "That subject isn't available.")
		return
	}
	log.WithFields(log.Fields{"user": ownerName, "subject": subjEv.Value}).Info("Subject selected")

	topicID := "medquiz-topic:" + flowID
	topicCh := b.collectors.arm(topicID, ownerID)
	err = s.InteractionRespond(subjEv.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("Subject: **%s**. Now pick a topic:", subjEv.Value),
			Components: []discordgo.MessageComponent{actionsRow(topicMenu(topicID, topics))},
		},
	})
	if err != nil {
		b.collectors.disarm(topicID)
		log.WithError(err).Error("Failed to send topic menu")
		return
	}

	topicEv, ok := b.collectors.await(topicID, topicCh, b.Config.SelectTimeout)
	if !ok {
		s.ChannelMessageSend(channelID, "Topic selection timed out. Use `!games` to try again.")
		return
	}
	selection, ok := flow.ChooseTopic(topicEv.ActorID, topicEv.Value)
	if !ok {
		respondClosed(s, topicEv.Interaction, "That topic isn't available.")
		return
	}
	log.WithFields(log.Fields{"user": ownerName, "topic": selection.Topic}).Info("Topic selected")

	respondClosed(s, topicEv.Interaction, fmt.Sprintf("Generating %d questions on %s...", b.Config.QuestionCount, selection.Topic))
	b.runQuiz(s, channelID, ownerID, ownerName, "Medical Trivia", &selection)
}

// runQuiz generates a question set and drives one session to completion:
// present a question, wait for the owner's pick or the timeout, score,
// advance. Exactly one answer window is open at any time.
func (b *Bot) runQuiz(s *discordgo.Session, channelID, ownerID, ownerName, game string, topic *quiz.Selection) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	set, err := b.Provider.Generate(ctx, b.Config.QuestionCount, topic)
	if err != nil {
		var malformed *quiz.MalformedOutputError
		msg := "Sorry, I couldn't reach the question generator. Please try again later."
		if errors.As(err, &malformed) {
			msg = "Sorry, the generated questions came back in a shape I couldn't use. Please try again."
		}
		log.WithError(err).WithFields(log.Fields{"user": ownerName, "game": game}).Error("Question generation failed")
		s.ChannelMessageSend(channelID, msg)
		return
	}

	session := quiz.NewSession(uuid.NewString(), ownerID, set)
	log.WithFields(log.Fields{"user": ownerName, "game": game, "questions": len(set)}).Info("Quiz session started")

	for {
		q, ok := session.Current()
		if !ok {
			return
		}

		windowID := fmt.Sprintf("quiz:%s:%d", session.ID, session.Index)
		ch := b.collectors.arm(windowID, ownerID)

		embed := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Question %d of %d", session.Index+1, len(set)),
			Description: q.Prompt,
			Color:       questionColor,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("%s, pick an answer within %d seconds.", ownerName, int(b.Config.AnswerTimeout.Seconds())),
			},
		}
		_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{actionsRow(answerMenu(windowID, q))},
		})
		if err != nil {
			b.collectors.disarm(windowID)
			log.WithError(err).Error("Failed to post question")
			s.ChannelMessageSend(channelID, "Error posting question. Ending the game.")
			return
		}

		var res quiz.Resolution
		ev, answered := b.collectors.await(windowID, ch, b.Config.AnswerTimeout)
		if answered {
			res, ok = session.Answer(ev.ActorID, quiz.Label(ev.Value))
			if !ok {
				// The collector only delivers owner events for the open
				// window, so this should not happen.
				continue
			}
			if res.Correct {
				respondClosed(s, ev.Interaction, "Correct answer! 🎉")
			} else {
				respondClosed(s, ev.Interaction, fmt.Sprintf("Wrong! The correct answer was **%s**.", res.CorrectLabel))
			}
		} else {
			res, _ = session.Timeout()
			s.ChannelMessageSend(channelID, "Time's up! No answer selected.")
		}

		if res.Finished {
			s.ChannelMessageSend(channelID, fmt.Sprintf("Game over, %s! You scored **%d out of %d**.", ownerName, res.Score, res.Total))
			log.WithFields(log.Fields{"user": ownerName, "game": game, "score": res.Score, "total": res.Total}).Info("Quiz session finished")
			b.recordResult(ownerID, ownerName, game, topic, res.Score, res.Total)
			return
		}
	}
}

func (b *Bot) recordResult(userID, username, game string, topic *quiz.Selection, score, total int) {
	topicLabel := "General Knowledge"
	if topic != nil {
		topicLabel = topic.Topic
	}
	err := b.DB.RecordResult(db.Result{
		UserID:   userID,
		Username: username,
		Game:     game,
		Topic:    topicLabel,
		Score:    score,
		Total:    total,
		PlayedAt: time.Now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to record quiz result")
	}
}

func (b *Bot) handleScores(s *discordgo.Session, m *discordgo.MessageCreate) {
	results, err := b.DB.TopScores(10)
	if err != nil {
		log.WithError(err).Error("Failed to fetch leaderboard")
		s.ChannelMessageSend(m.ChannelID, "Error fetching scores.")
		return
	}
	if len(results) == 0 {
		s.ChannelMessageSendReply(m.ChannelID, "No games played yet. Use `!games` to start one!", m.Reference())
		return
	}

	var response strings.Builder
	response.WriteString("**Quiz Leaderboard**\n\n")
	for i, r := range results {
		response.WriteString(fmt.Sprintf("%d. %s — %d/%d (%s)\n", i+1, r.Username, r.Score, r.Total, r.Topic))
	}

	stats, err := b.DB.Stats(m.Author.ID)
	if err == nil && stats.Games > 0 {
		response.WriteString(fmt.Sprintf("\nYour stats: %d games, %d/%d correct overall.", stats.Games, stats.Correct, stats.Asked))
	}

	s.ChannelMessageSendReply(m.ChannelID, response.String(), m.Reference())
	log.WithFields(log.Fields{"user": m.Author.Username}).Info("Scores requested")
}

// respondClosed updates the interaction's message, replacing its components
// so the menu can't be used again.
func respondClosed(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	var embeds []*discordgo.MessageEmbed
	if i.Message != nil {
		embeds = i.Message.Embeds
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.WithError(err).Warn("Failed to update interaction message")
	}
}

func actionsRow(menu discordgo.SelectMenu) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{menu},
	}
}

func gameMenu(customID string) discordgo.SelectMenu {
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: "Choose a game...",
		Options: []discordgo.SelectMenuOption{
			{
				Label:       "Trivia",
				Description: "Test your knowledge!",
				Value:       gameTrivia,
			},
			{
				Label:       "Medical Trivia",
				Description: "Pick a subject and topic, then test yourself!",
				Value:       gameMedicalTrivia,
			},
		},
	}
}

func subjectMenu(customID string) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(quiz.Subjects))
	for _, subject := range quiz.Subjects {
		options = append(options, discordgo.SelectMenuOption{
			Label: string(subject),
			Value: string(subject),
		})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: "Choose a subject...",
		Options:     options,
	}
}

func topicMenu(customID string, topics []string) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(topics))
	for _, topic := range topics {
		options = append(options, discordgo.SelectMenuOption{
			Label: topic,
			Value: topic,
		})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: "Choose a topic...",
		Options:     options,
	}
}

func answerMenu(customID string, q quiz.Question) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(q.Options))
	for i, opt := range q.Options {
		label := quiz.Labels[i]
		options = append(options, discordgo.SelectMenuOption{
			Label: truncateLabel(fmt.Sprintf("%s) %s", label, opt)),
			Value: string(label),
		})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: "Choose your answer...",
		Options:     options,
	}
}

// truncateLabel keeps option labels within Discord's 100 character limit.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= 100 {
		return s
	}
	return string(runes[:97]) + "..."
}
