// cmd/bot/main.go
package main

import (
	"cashback/internal/config"
	"cashback/internal/period"
	"cashback/internal/service"
	"cashback/internal/storage/postgres"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/text/encoding/charmap"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func SanitizeInput(s string) string {
	// Замени все пробельные символы на обычный пробел
	result := ""
	for _, r := range s {
		if unicode.IsSpace(r) {
			result += " "
		} else {
			result += string(r)
		}
	}
	// Убери лишние пробелы
	return strings.Join(strings.Fields(result), " ")
}

func main() {
	_ = godotenv.Load()

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set")
	}

	cfg := config.MustLoad()
	db, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}
	defer db.Close()

	store := postgres.NewStorage(db)
	svc := service.New(store, period.SystemClock{})

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Panic(err)
	}

	log.Printf("Bot started: @%s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		text := SanitizeInput(fixEncoding(update.Message.Text))

		log.Printf("📥 Received: %q", text)

		var msgText string
		var err error

		switch {
		case text == "/start" || text == "/help":
			msgText = "🏦 *Кэшбэк-трекер*\n\n" +
				"Команды:\n" +
				"`/add_bank Сбер 5000` — добавить банк (лимит опционален)\n" +
				"`/add_card Сбер МИР` — добавить карту\n" +
				"`/add_cashback МИР Аптеки 5` — категория на текущий месяц\n" +
				"`/tx МИР Аптеки 1000` — записать покупку\n" +
				"`/cards` — какими картами ещё выгодно платить\n" +
				"`/estimate` — остаток лимита по картам\n" +
				"`/choose Аптеки 1000` — лучшая карта для покупки"

		case strings.HasPrefix(text, "/add_bank "):
			msgText, err = handleAddBank(svc, strings.Fields(text)[1:])

		case strings.HasPrefix(text, "/add_card "):
			msgText, err = handleAddCard(svc, strings.Fields(text)[1:])

		case strings.HasPrefix(text, "/add_cashback "):
			msgText, err = handleAddCashback(svc, strings.Fields(text)[1:])

		case strings.HasPrefix(text, "/tx "):
			msgText, err = handleTransaction(svc, strings.Fields(text)[1:])

		case text == "/cards":
			msgText, err = handleCards(svc)

		case text == "/estimate":
			msgText, err = handleEstimate(svc)

		case strings.HasPrefix(text, "/choose "):
			msgText, err = handleChoose(svc, strings.Fields(text)[1:])

		default:
			msgText = "Неизвестная команда. Напиши /help"
		}

		if err != nil {
			msgText = "❌ Ошибка: " + err.Error()
		}

		msg := tgbotapi.NewMessage(chatID, msgText)
		msg.ParseMode = "Markdown"
		bot.Send(msg)
	}
}

func handleAddBank(svc *service.Service, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("используй: /add_bank Банк [лимит]")
	}
	var limit *float64
	if len(args) >= 2 {
		v, err := strconv.ParseFloat(args[len(args)-1], 64)
		if err != nil {
			return "", fmt.Errorf("неверный лимит: %q", args[len(args)-1])
		}
		limit = &v
		args = args[:len(args)-1]
	}
	bank, err := svc.AddBank(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return "", err
	}
	return "✅ Банк *" + bank.Name + "* добавлен", nil
}

func handleAddCard(svc *service.Service, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("используй: /add_card Банк Карта")
	}
	card, err := svc.AddCard(context.Background(), strings.Join(args[1:], " "), args[0])
	if err != nil {
		return "", err
	}
	return "✅ Карта *" + card.Name + "* добавлена", nil
}

func handleAddCashback(svc *service.Service, args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("используй: /add_cashback Карта Категория Процент [future]")
	}
	periodToken := period.TokenCurrent
	if args[len(args)-1] == period.TokenFuture {
		periodToken = period.TokenFuture
		args = args[:len(args)-1]
	}
	percent, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		return "", fmt.Errorf("неверный процент: %q", args[len(args)-1])
	}
	cardName := args[0]
	categoryName := strings.Join(args[1:len(args)-1], " ")

	cat, err := svc.AddCashback(context.Background(), cardName, categoryName, percent, false, periodToken)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Категория *%s* %.1f%% (%s) сохранена", cat.Name, cat.Percent, svc.PeriodLabel(cat.Period)), nil
}

func handleTransaction(svc *service.Service, args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("используй: /tx Карта Категория Сумма")
	}
	value, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		return "", fmt.Errorf("неверная сумма: %q", args[len(args)-1])
	}
	cardName := args[0]
	categoryName := strings.Join(args[1:len(args)-1], " ")

	if err := svc.Transaction(context.Background(), cardName, categoryName, value); err != nil {
		return "", err
	}
	return "✅ Покупка записана", nil
}

func handleCards(svc *service.Service) (string, error) {
	cards, err := svc.ListCards(context.Background())
	if err != nil {
		return "", err
	}
	if len(cards) == 0 {
		return "📭 Нет подходящих карт", nil
	}
	var lines []string
	lines = append(lines, "💳 *Карты*")
	for _, card := range cards {
		lines = append(lines, "- "+card.Name)
	}
	return strings.Join(lines, "\n"), nil
}

func handleEstimate(svc *service.Service) (string, error) {
	estimates, err := svc.EstimateCashback(context.Background())
	if err != nil {
		return "", err
	}
	if len(estimates) == 0 {
		return "📭 Нет подходящих карт", nil
	}
	var lines []string
	lines = append(lines, "💳 *Остаток лимита*")
	for _, e := range estimates {
		if e.Remaining == nil {
			lines = append(lines, fmt.Sprintf("- %s: без лимита", e.Card.Name))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: %.2f", e.Card.Name, *e.Remaining))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func handleChoose(svc *service.Service, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("используй: /choose Категория [Сумма]")
	}
	value := 0.0
	if len(args) >= 2 {
		if v, err := strconv.ParseFloat(args[len(args)-1], 64); err == nil {
			value = v
			args = args[:len(args)-1]
		}
	}
	categoryName := strings.Join(args, " ")

	card, percent, err := svc.Choose(context.Background(), categoryName, value)
	if err != nil {
		return "", err
	}
	if card == nil {
		return fmt.Sprintf("📭 Нет карты с кэшбэком по *%s*", categoryName), nil
	}
	return fmt.Sprintf("🔍 *%s* — %.1f%%", card.Name, percent), nil
}

func fixEncoding(s string) string {
	// Проверим, является ли строка валидной UTF-8
	if utf8.ValidString(s) {
		return s
	}

	// Пробуем перекодировать из windows-1251
	decoder := charmap.Windows1251.NewDecoder()
	fixed, err := decoder.String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}

	// Если не получилось — заменяем невалидные символы
	return strings.ToValidUTF8(s, "")
}
