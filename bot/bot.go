package bot

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelsied/gptgames-bot/db"
	"github.com/kelsied/gptgames-bot/quiz"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// Config is read from the environment once at startup.
type Config struct {
	DiscordToken    string
	OpenAIKey       string
	Model           string
	AllowedChannels []string
	QuestionCount   int
	AnswerTimeout   time.Duration
	SelectTimeout   time.Duration
	MaxTokens       int
	Temperature     float32
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("No .env file loaded, relying on environment")
	}

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:         envOr("OPENAI_MODEL", openai.GPT3Dot5Turbo),
		QuestionCount: envIntOr("QUESTION_COUNT", 5),
		AnswerTimeout: time.Duration(envIntOr("ANSWER_TIMEOUT_SECONDS", 30)) * time.Second,
		SelectTimeout: time.Duration(envIntOr("SELECT_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxTokens:     envIntOr("MAX_TOKENS", 2048),
		Temperature:   0.8,
	}
	if channels := os.Getenv("ALLOWED_CHANNELS"); channels != "" {
		for _, id := range strings.Split(channels, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.AllowedChannels = append(cfg.AllowedChannels, id)
			}
		}
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is not set")
	}
	if cfg.OpenAIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("Ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

type Bot struct {
	Session    *discordgo.Session
	DB         *db.DB
	Config     *Config
	LLM        *openai.Client
	Provider   *quiz.Provider
	collectors *collectors
}

func NewBot() (*Bot, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences |
		discordgo.IntentMessageContent

	database, err := db.NewDB()
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(cfg.OpenAIKey)
	bot := &Bot{
		Session:    session,
		DB:         database,
		Config:     cfg,
		LLM:        client,
		Provider:   quiz.NewProvider(client, cfg.Model, cfg.MaxTokens, cfg.Temperature),
		collectors: newCollectors(),
	}

	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleMessage)
	session.AddHandler(bot.handleInteraction)
	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.Session.Open(); err != nil {
		return err
	}
	if err := b.registerCommands(); err != nil {
		return err
	}
	log.Info("Bot is running...")
	log.Infof("Allowed channels: %s", strings.Join(b.Config.AllowedChannels, ", "))
	return nil
}

func (b *Bot) Close() {
	if err := b.Session.Close(); err != nil {
		log.WithError(err).Error("Error closing gateway session")
	}
	if err := b.DB.Close(); err != nil {
		log.WithError(err).Error("Error closing database")
	}
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Infof("Logged in as: %s#%s", r.User.Username, r.User.Discriminator)
	if err := s.UpdateGameStatus(0, "Chat with me using !chat"); err != nil {
		log.WithError(err).Warn("Failed to set presence")
	}
}

func (b *Bot) registerCommands() error {
	_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", &discordgo.ApplicationCommand{
		Name:        "games",
		Description: "Pick a game to play",
	})
	if err != nil {
		return err
	}
	log.Info("Registered /games command")
	return nil
}

func (b *Bot) channelAllowed(channelID string) bool {
	if len(b.Config.AllowedChannels) == 0 {
		// No channels configured, respond everywhere.
		return true
	}
	for _, id := range b.Config.AllowedChannels {
		if channelID == id {
			return true
		}
	}
	return false
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if !b.channelAllowed(m.ChannelID) {
		return
	}

	switch {
	case m.Content == "!games scores":
		b.handleScores(s, m)
	case m.Content == "!games":
		b.handleGames(s, m)
	case strings.HasPrefix(m.Content, "!chat "):
		b.handleChat(s, m, strings.TrimPrefix(m.Content, "!chat "), false)
	case strings.HasPrefix(m.Content, "!ask "):
		b.handleChat(s, m, strings.TrimPrefix(m.Content, "!ask "), true)
	}
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "games" {
			b.handleGamesSlash(s, i)
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if len(data.Values) == 0 {
			return
		}
		ev := componentEvent{
			ActorID:     interactionUserID(i),
			Value:       data.Values[0],
			Interaction: i,
		}
		if !b.collectors.dispatch(data.CustomID, ev) {
			// Stale window or foreign actor: acknowledge quietly so the
			// client doesn't show a failed interaction.
			err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseDeferredMessageUpdate,
			})
			if err != nil {
				log.WithError(err).Debug("Failed to ack stale interaction")
			}
		}
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}
