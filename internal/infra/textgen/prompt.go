package textgen

import (
	"fmt"
	"strings"
	"time"

	"morning-post/internal/domain/entity"
)

// RecipeType values accepted by the prompts.
const (
	RecipeTypePP   = "пп"
	RecipeTypeKeto = "кето"
)

var weekdaysRU = map[time.Weekday]string{
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
	time.Sunday:    "воскресенье",
}

// Genitive case, as used after a day number.
var monthsRU = map[time.Month]string{
	time.January:   "января",
	time.February:  "февраля",
	time.March:     "марта",
	time.April:     "апреля",
	time.May:       "мая",
	time.June:      "июня",
	time.July:      "июля",
	time.August:    "августа",
	time.September: "сентября",
	time.October:   "октября",
	time.November:  "ноября",
	time.December:  "декабря",
}

// FormatDateRussian renders a date the way it reads in the channel,
// e.g. "1 октября".
func FormatDateRussian(date time.Time) string {
	return fmt.Sprintf("%d %s", date.Day(), monthsRU[date.Month()])
}

// WeekdayRussian returns the Russian weekday name for a date.
func WeekdayRussian(date time.Time) string {
	return weekdaysRU[date.Weekday()]
}

const sweetenerPromptKeto = `КРИТИЧЕСКИ ВАЖНО про ПОДСЛАСТИТЕЛИ (для КЕТО):
- Используй ТОЛЬКО: эритрит ИЛИ аллюлозу
- Эритрит: используй как сахар 1:1 (например, 50г эритрита = 50г сахара)
- Аллюлоза: используй 1.3:1 (65г аллюлозы = 50г сахара)
- НИКОГДА не используй стевию для кето-рецептов
- БЕЗ обычного сахара, мёда, фруктозы
- Считай чистые углеводы (общие углеводы - клетчатка - сахароспирты)`

const sweetenerPromptPP = `КРИТИЧЕСКИ ВАЖНО про ПОДСЛАСТИТЕЛИ (для ПП):
- Основные: эритрит ИЛИ аллюлоза (измеряй в граммах/столовых ложках)
- Эритрит: 1:1 как сахар (30г эритрита заменяет 30г сахара)
- Аллюлоза: 1.3:1 (39г аллюлозы заменяет 30г сахара)
- СТЕВИЯ: ТОЛЬКО в каплях! Стевия в 200-300 раз слаще сахара!
  * 2-3 капли стевии = 1 чайная ложка сахара
  * 5-7 капель стевии = 1 столовая ложка сахара
  * НИКОГДА не пиши "2 столовые ложки стевии" - это ОШИБКА!
- Если используешь стевию, пиши: "3-5 капель стевии (по вкусу)"
- БЕЗ обычного сахара`

const recipeTypePromptKeto = `Тип рецепта: КЕТО (кетогенная диета)
Требования:
- Максимум 5-10г чистых углеводов на порцию
- Высокое содержание жиров (70-80% калорий)
- Умеренный белок
- БЕЗ: сахара, муки, крахмала, картофеля, риса, бобовых
- МОЖНО: авокадо, орехи, сыр, сливки, масло, яйца, мясо, рыба, некрахмалистые овощи
- Используй миндальную или кокосовую муку вместо обычной`

const recipeTypePromptPP = `Тип рецепта: ПП (правильное питание)
Требования:
- Сбалансированное соотношение БЖУ
- Умеренные калории
- Цельнозерновые продукты вместо рафинированных
- Нежирные белки
- Много овощей и зелени
- МОЖНО: цельнозерновая мука, овсянка, гречка, киноа, нежирное мясо/рыба
- Минимум обработанных продуктов`

const systemPromptTemplate = `Ты дружелюбный русский фуд-блогер, создающий ежедневные посты о кулинарных праздниках. Пиши тепло, по-дружески на русском языке с естественным использованием эмодзи.

%s

%s

ТРЕБОВАНИЯ К КОНТЕНТУ:
- Создавай РЕАЛИСТИЧНЫЕ рецепты, которые реально работают на кухне
- Указывай ТОЧНЫЕ граммовки и объёмы
- Точное время приготовления
- Простые рецепты (3-8 ингредиентов, 5-10 шагов)
- Добавляй полезные кулинарные советы
- Используй эмодзи естественно

Ответ ТОЛЬКО в формате JSON со структурой:
{
  "greeting": "уникальное утреннее приветствие (1-2 предложения с эмодзи)",
  "holidays": [
    {"name": "название праздника 1", "emoji": "🍎", "description": "краткое описание (1 предложение)"},
    {"name": "название праздника 2", "emoji": "🍕", "description": "краткое описание (1 предложение)"},
    {"name": "название праздника 3", "emoji": "🍫", "description": "краткое описание (1 предложение)"}
  ],
  "recipe": {
    "name": "название рецепта на русском",
    "servings": число_порций,
    "cooking_time": время_в_минутах,
    "calories_per_serving": калории_на_порцию,
    "ingredients": ["ингредиент 1 с точной граммовкой", "ингредиент 2 с граммовкой", ...],
    "instructions": ["подробный шаг 1", "подробный шаг 2", ...],
    "tip": "полезный кулинарный совет на русском",
    "image_prompt_en": "описание готового блюда на английском для генерации изображения"
  }
}

ВАЖНО: Верни ТОЛЬКО валидный JSON, без дополнительного текста!`

// systemPrompt assembles the full system prompt for a recipe type.
func systemPrompt(recipeType string) string {
	sweetener, recipe := sweetenerPromptPP, recipeTypePromptPP
	if recipeType == RecipeTypeKeto {
		sweetener, recipe = sweetenerPromptKeto, recipeTypePromptKeto
	}
	return fmt.Sprintf(systemPromptTemplate, sweetener, recipe)
}

// userPrompt builds the per-date prompt listing known holidays.
func userPrompt(req Request) string {
	var holidaysList string
	if len(req.Holidays) > 0 {
		lines := make([]string, 0, 5)
		for i, h := range req.Holidays {
			if i == 5 {
				break
			}
			emoji := h.Emoji
			if emoji == "" {
				emoji = "🎉"
			}
			desc := h.Description
			if desc == "" {
				desc = "Кулинарный праздник"
			}
			if len([]rune(desc)) > 80 {
				desc = string([]rune(desc)[:80])
			}
			lines = append(lines, fmt.Sprintf("- %s %s: %s", emoji, h.Name, desc))
		}
		holidaysList = strings.Join(lines, "\n")
	} else {
		holidaysList = "- Сегодня нет кулинарных праздников в базе, придумай 3 интересных кулинарных события для этого дня"
	}

	prompt := fmt.Sprintf(`Создай пост для %s (%s).

Известные кулинарные праздники на эту дату:
%s

ЗАДАНИЕ:
1. Придумай уникальное тёплое приветствие (не просто "Доброе утро")
2. Опиши 3 кулинарных праздника с интересными фактами (если в списке мало - придумай подходящие)
3. Создай %s-рецепт по теме ОДНОГО из праздников

ПОМНИ про правильное использование подсластителей!

Верни ТОЛЬКО валидный JSON!`,
		FormatDateRussian(req.Date),
		WeekdayRussian(req.Date),
		holidaysList,
		strings.ToUpper(recipeTypeOrDefault(req.RecipeType)))

	if req.Hint != "" {
		prompt += "\n\nДополнительное пожелание: " + req.Hint
	}
	return prompt
}

// simplifiedPrompt builds the short recipe-only prompt used after a failed
// full generation.
func simplifiedPrompt(req Request) string {
	return fmt.Sprintf(`Создай простой %s-рецепт на русском языке для %s.

Рецепт должен быть:
- Без сахара (используй эритрит: граммовка как у сахара, или стевию: 3-5 КАПЕЛЬ)
- С 5-6 ингредиентами
- С 5 шагами приготовления
- Время 15-30 минут

Верни JSON:
{"name": "название", "servings": 4, "cooking_time": 20, "ingredients": ["ингредиент 1", "ингредиент 2"], "instructions": ["шаг 1", "шаг 2"], "tip": "совет", "image_prompt_en": "dish description in english"}`,
		strings.ToUpper(recipeTypeOrDefault(req.RecipeType)),
		FormatDateRussian(req.Date))
}

func recipeTypeOrDefault(rt string) string {
	if rt == "" {
		return RecipeTypePP
	}
	return rt
}

// DefaultGreeting is used when the model omits the greeting field.
const DefaultGreeting = "Доброе утро, мои дорогие! ☀️"

// StaticContent returns the hand-written fallback used when every
// generation tier has failed. It always validates.
func StaticContent(date time.Time) *Content {
	return &Content{
		Greeting: "Доброе утро, мои дорогие! ☀️ Пусть этот день будет вкусным и полезным!",
		Holidays: []entity.Holiday{{
			Name:        fmt.Sprintf("Сегодня %s", FormatDateRussian(date)),
			Description: "прекрасный день, чтобы приготовить что-то особенное! 🍽️",
			Emoji:       "🎉",
		}},
		Recipe: entity.Recipe{
			Name:               "Овсяноблин с ягодами",
			Servings:           1,
			CookTimeMinutes:    10,
			CaloriesPerServing: 250,
			Ingredients: []string{
				"50г овсяных хлопьев",
				"1 яйцо",
				"50мл молока 1.5%",
				"50г свежих ягод",
				"15г эритрита (или 3-4 капли стевии)",
				"щепотка корицы",
			},
			Steps: []string{
				"Смешайте овсяные хлопья, яйцо и молоко в миске до однородности",
				"Добавьте эритрит (или стевию) и корицу, перемешайте",
				"Разогрейте антипригарную сковороду на среднем огне",
				"Вылейте тесто и распределите по сковороде",
				"Жарьте 2-3 минуты с каждой стороны до золотистого цвета",
				"Подавайте со свежими ягодами",
			},
			Tip:         "Для более нежной текстуры измельчите овсянку в блендере перед приготовлением",
			ImagePrompt: "healthy oat pancake with fresh berries, breakfast, appetizing",
		},
	}
}
