package telegram

const (
	msgStart = `👋 Привет! Я бот для анализа акне по фотографии.

📸 Отправьте фото кожи, и я отмечу найденные поражения на снимке и дам краткое заключение.

📋 Команды:
/check — начать анализ
/threshold N — порог уверенности в процентах (10–90)
/stats — сводка по последнему анализу
/guide — справочник по типам акне
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото кожи
2️⃣ Бот найдёт поражения и подпишет их тип и уверенность
3️⃣ Вы получите снимок с рамками и текстовое заключение

🎚 Рамки с уверенностью ниже порога скрываются. Порог меняется командой /threshold, например /threshold 60. Снимок перерисуется без повторного анализа.

💡 Рекомендации:
• Снимайте при дневном свете, без вспышки
• Держите камеру на расстоянии 20–30 см
• Фото должно быть чётким

⚠️ Бот не ставит диагноз. Обратитесь к дерматологу.`

	msgAwaitingPhoto   = "📸 Отправьте фото кожи для анализа."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для нового анализа."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото кожи для анализа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую изображение..."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgDecodeError     = "⚠️ Не удалось прочитать изображение. Поддерживаются JPEG, PNG, GIF, WebP и BMP."
	msgTimeout         = "⌛ Сервис распознавания не ответил вовремя. Попробуйте ещё раз."
	msgPoorQuality     = "📷 Фото слишком тёмное, пересвеченное или размытое. Переснимите при хорошем освещении."
	msgNoAnalysis      = "📭 Анализов пока нет. Отправьте фото кожи."
	msgThresholdSet    = "🎚 Порог установлен: %d%%"
	msgThresholdUsage  = "🎚 Текущий порог: %d%%. Чтобы изменить, отправьте /threshold N, где N от 10 до 90."

	msgInsightsFailed = `*Analysis Failed*

Не удалось получить заключение. Разметка на снимке выше остаётся актуальной.`
	msgNoInsights            = "ℹ️ Заключение сейчас недоступно. Разметка на снимке выше остаётся актуальной."
	msgInsightsNotConfigured = "ℹ️ Текстовое заключение недоступно: сервис генерации не подключён."
)

const msgGuide = `📚 Справочник по типам акне

⚫ Комедоны (закрытые и открытые)
Тяжесть: лёгкая
Закупоренные поры. Закрытые комедоны остаются под кожей и выглядят как белые точки. Открытые комедоны выходят на поверхность и темнеют при контакте с воздухом.
Средства: салициловая кислота, ретиноиды (адапален), бензоилпероксид

🟠 Папулы
Тяжесть: лёгкая или средняя
Небольшие красные плотные бугорки без гноя, болезненные при касании.
Средства: бензоилпероксид, салициловая кислота, местные антибиотики

🔴 Пустулы
Тяжесть: лёгкая или средняя
Воспалённые элементы с белой или жёлтой гнойной головкой на красном основании.
Средства: бензоилпероксид, местные ретиноиды, местные антибиотики

🟤 Узлы
Тяжесть: средняя или тяжёлая
Крупные плотные болезненные образования глубоко под кожей. Могут оставлять рубцы.
Средства: пероральные антибиотики, изотретиноин, профессиональная экстракция

🟤 Кисты
Тяжесть: тяжёлая
Крупные мягкие наполненные гноем образования под кожей. Наиболее высокий риск рубцов.
Средства: изотретиноин, инъекции кортикостероидов, оральные контрацептивы (при гормональном акне)

⚠️ Справочник носит информационный характер. Лечение назначает дерматолог.`
