package conversation

// Main menu labels. The bot registers them as command aliases.
const (
	LabelAddSchedule  = "📅 Добавить расписание"
	LabelAddDeadline  = "⏰ Добавить дедлайн"
	LabelSchedule     = "📋 Мое расписание"
	LabelDeadlines    = "📝 Мои дедлайны"
	LabelReset        = "🔄 Сбросить состояние"
	LabelHelp         = "ℹ️ Помощь"
	LabelCancel       = "❌ Отменить"
	labelCancelInline = "❌ Отмена"
)

// MainMenu is the reply keyboard layout shown outside of flows.
var MainMenu = [][]string{
	{LabelAddSchedule, LabelAddDeadline},
	{LabelSchedule, LabelDeadlines},
	{LabelReset, LabelHelp},
}

// CancelMenu is the reply keyboard shown inside flows.
var CancelMenu = [][]string{{LabelCancel}}

const (
	textGreeting = "👋 Привет! Я бот-напоминалка для студентов.\n" +
		"Я помогу не забыть о парах и дедлайнах.\n\n" +
		"Выбери действие на клавиатуре:"

	textHelp = "📚 *Доступные команды:*\n\n" +
		"*Основные действия:*\n" +
		"📅 Добавить расписание - Добавить новую пару в расписание\n" +
		"⏰ Добавить дедлайн - Добавить новый дедлайн\n" +
		"📋 Мое расписание - Посмотреть и редактировать расписание\n" +
		"📝 Мои дедлайны - Посмотреть и редактировать дедлайны\n\n" +
		"*Дополнительные команды:*\n" +
		"/start - Перезапустить бота\n" +
		"/help - Показать это сообщение\n" +
		"/cancel - Отменить текущее действие\n" +
		"/edit\\_schedule - Изменить пару\n" +
		"/edit\\_deadline - Изменить дедлайн\n" +
		"/reset - Сбросить все данные\n\n" +
		"*Форматы данных:*\n" +
		"- День недели: понедельник, вторник и т.д.\n" +
		"- Время пары: 14:30-16:00\n" +
		"- Дата и время дедлайна: 2024-12-31 23:59"

	textReset     = "✅ Все данные сброшены. Вы можете начать заново."
	textCancelled = "❌ Действие отменено."
	textError     = "❌ Произошла ошибка. Пожалуйста, попробуйте еще раз."
	textNotFound  = "⚠️ Запись не найдена. Откройте список заново и повторите действие."
	textExpired   = "⌛ Это действие устарело. Начните заново."
	textUnknown   = "🤔 Не понимаю. Выберите действие на клавиатуре или отправьте /help."

	textAskDay         = "📅 Выберите день недели для пары:"
	textAskTime        = "🕐 Введите время начала и конца пары:\nФормат: *ЧЧ:ММ-ЧЧ:ММ*\nПример: _14:30-16:00_"
	textAskClass       = "📚 Введите название предмета:"
	textAskProfessor   = "👨‍🏫 Введите имя преподавателя:"
	textAskRemindClass = "⏰ За сколько минут до начала пары напомнить?\nВведите число (например, 15):"

	textAskName        = "📝 Введите название дедлайна:"
	textAskDateTime    = "📅 Введите дату и время дедлайна:\nФормат: *ГГГГ-ММ-ДД ЧЧ:ММ*\nПример: _2024-12-31 23:59_"
	textAskDescription = "📄 Введите описание дедлайна (необязательно):\nИли отправьте '-' чтобы пропустить"
	textAskRemindDue   = "⏰ За сколько минут до дедлайна напомнить?\nВведите число (например, 60):"

	textBadDay      = "❌ Неизвестный день недели.\nВыберите из списка или напишите, например: понедельник."
	textBadTime     = "❌ Неверный формат времени.\nИспользуйте: *ЧЧ:ММ-ЧЧ:ММ*\nПример: _09:00-10:30_"
	textBadDateTime = "❌ Неверный формат даты.\nИспользуйте: *ГГГГ-ММ-ДД ЧЧ:ММ*\nПример: _2024-12-31 23:59_"
	textBadNumber   = "❌ Пожалуйста, введите целое число минут от 0 до 525600."
	textEmpty       = "❌ Значение не может быть пустым. Попробуйте еще раз."

	textScheduleAdded   = "✅ Пара успешно добавлена в расписание!"
	textDeadlineAdded   = "✅ Дедлайн успешно добавлен!"
	textScheduleUpdated = "✅ Расписание успешно обновлено!"
	textDeadlineUpdated = "✅ Дедлайн успешно обновлен!"
	textScheduleDeleted = "✅ Пара успешно удалена!"
	textDeadlineDeleted = "✅ Дедлайн успешно удален!"

	textScheduleEmpty    = "📭 Ваше расписание пусто."
	textDeadlinesEmpty   = "📭 У вас нет дедлайнов."
	textNoValidDeadlines = "📭 У вас нет валидных дедлайнов."
	textPickSchedule     = "✏️ Выберите пару для редактирования:"
	textPickDeadline     = "✏️ Выберите дедлайн для редактирования:"
	textPickField        = "Что вы хотите отредактировать?"
	textPickNewDay       = "📅 Выберите новый день недели:"
)

var fieldLabels = map[Field]string{
	FieldDay:         "День",
	FieldTime:        "Время",
	FieldClassName:   "Предмет",
	FieldProfessor:   "Преподаватель",
	FieldReminder:    "Напоминание",
	FieldName:        "Название",
	FieldDateTime:    "Дата и время",
	FieldDescription: "Описание",
}

var newValuePrompts = map[Field]string{
	FieldTime:        "🕐 Введите новое время в формате *ЧЧ:ММ-ЧЧ:ММ*:",
	FieldClassName:   "📚 Введите новое название предмета:",
	FieldProfessor:   "👨‍🏫 Введите новое имя преподавателя:",
	FieldReminder:    "⏰ Введите новое количество минут для напоминания:",
	FieldName:        "📝 Введите новое название дедлайна:",
	FieldDateTime:    "📅 Введите новую дату и время в формате *ГГГГ-ММ-ДД ЧЧ:ММ*:",
	FieldDescription: "📄 Введите новое описание (или '-' чтобы очистить):",
}
