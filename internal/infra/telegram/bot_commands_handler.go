// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"

	"oneday/internal/app"
	"oneday/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Register wires every command and callback of the bot. Only the owner chat
// is served.
func Register(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	planner *app.PlannerService,
	reminders *app.ReminderService,
	baseLogger *logrus.Entry,
) {
	owner := b.Group()
	owner.Use(OwnerOnly(cfg.OwnerTelegramID, baseLogger))

	sessions := newSessionStore(planner.Today)
	RegisterBotCommands(owner, baseLogger)
	RegisterPlannerHandlers(ctx, owner, planner, sessions, baseLogger)
	RegisterReminderHandlers(ctx, owner, reminders, sessions, baseLogger)
}

// OwnerOnly drops updates from anyone but the owner.
func OwnerOnly(ownerID int64, baseLogger *logrus.Entry) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if c.Sender() == nil || c.Sender().ID != ownerID {
				fields := logrus.Fields{}
				if c.Sender() != nil {
					fields["sender_id"] = c.Sender().ID
				}
				baseLogger.WithFields(fields).Warn("Unauthorized access attempt")
				if c.Callback() != nil {
					return c.Respond(&telebot.CallbackResponse{Text: "권한이 없습니다."})
				}
				return c.Send("이 봇은 등록된 사용자만 사용할 수 있습니다.")
			}
			return next(c)
		}
	}
}

const helpText = `사용할 수 있는 명령어

/calendar [YYYY-MM] - 달력 보기
/today - 오늘로 이동
/categories - 카테고리 목록
/add_category <이름> - 카테고리 추가
/add_task <카테고리 번호> <할 일> - 할 일 추가
/tasks - 할 일 목록
/done <번호> - 할 일 완료/취소
/reminders - 알림 목록
/remind [AM|PM 시 분] - 알림 추가 (인자 없이 입력하면 시간 선택기)
/unremind <번호> - 알림 삭제
/sweep - 중복 알림 정리
/help - 도움말`

func RegisterBotCommands(g *telebot.Group, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	g.Handle("/start", func(c telebot.Context) error {
		startHelpLogger.WithFields(logrus.Fields{"command": "/start", "sender_id": c.Sender().ID}).Info("Processing /start command")
		name := strings.TrimSpace(c.Sender().FirstName)
		if name == "" {
			name = "사용자"
		}
		return c.Send("안녕하세요, " + name + "님! 하루 한 번, 할 일을 기록하고 알림을 받아 보세요.\n/help 로 명령어를 확인할 수 있습니다.")
	})

	g.Handle("/help", func(c telebot.Context) error {
		startHelpLogger.WithFields(logrus.Fields{"command": "/help", "sender_id": c.Sender().ID}).Info("Processing /help command")
		return c.Send(helpText)
	})

	g.Handle(&telebot.Btn{Unique: uniqueNoop}, func(c telebot.Context) error {
		return c.Respond()
	})
}
