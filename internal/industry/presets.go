package industry

import "example.com/cfo-ai/backend/internal/models"

// Пресеты отраслей: сезонность и волатильность управляют формой прогноза,
// DSO/DPO/DIO — справочные платежные циклы для аналитики.
var presets = []models.IndustryPreset{
	{
		ID:          "retail",
		Name:        "Розничная торговля",
		Description: "Сетевые и одиночные магазины, высокий сезонный спрос",
		Seasonality: 0.7,
		Volatility:  0.4,
		DSO:         15,
		DPO:         30,
		DIO:         45,
	},
	{
		ID:          "ecommerce",
		Name:        "Электронная коммерция",
		Description: "Онлайн-продажи, быстрые расчеты с покупателями",
		Seasonality: 0.7,
		Volatility:  0.4,
		DSO:         5,
		DPO:         25,
		DIO:         30,
	},
	{
		ID:          "construction",
		Name:        "Строительство",
		Description: "Подрядные работы, длинные циклы оплаты",
		Seasonality: 0.6,
		Volatility:  0.5,
		DSO:         60,
		DPO:         45,
		DIO:         20,
	},
	{
		ID:          "services",
		Name:        "Услуги",
		Description: "Профессиональные услуги, ровный спрос",
		Seasonality: 0.3,
		Volatility:  0.2,
		DSO:         30,
		DPO:         20,
		DIO:         0,
	},
	{
		ID:          "manufacturing",
		Name:        "Производство",
		Description: "Производственные компании, запасы и длинные контракты",
		Seasonality: 0.5,
		Volatility:  0.3,
		DSO:         45,
		DPO:         40,
		DIO:         60,
	},
}

// Preset возвращает пресет отрасли по идентификатору.
func Preset(id string) (models.IndustryPreset, bool) {
	for _, preset := range presets {
		if preset.ID == id {
			return preset, true
		}
	}
	return models.IndustryPreset{}, false
}

// Default — нейтральный пресет для компаний без выбранной отрасли.
func Default() models.IndustryPreset {
	return models.IndustryPreset{
		ID:          "generic",
		Name:        "Универсальный",
		Description: "Средние параметры без отраслевой специфики",
		Seasonality: 0.5,
		Volatility:  0.3,
		DSO:         30,
		DPO:         30,
		DIO:         30,
	}
}

// List возвращает все доступные пресеты.
func List() []models.IndustryPreset {
	out := make([]models.IndustryPreset, len(presets))
	copy(out, presets)
	return out
}
