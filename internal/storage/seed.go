package storage

// sampleAds are demo listings shown before operators publish real ones.
var sampleAds = []AdDraft{
	{
		Title: "Toyota Camry 2.5 AT",
		Model: "Camry",
		Year:  2019,
		Price: 17500000,
		Description: "Официальный дилерский автомобиль. Один владелец, полный комплект ключей, " +
			"сервисная история. Комплектация Luxe: камера заднего вида, подогрев сидений, " +
			"бесключевой доступ.",
		Photos: []string{
			"AQADnuQxG_9z0Ul-",
			"AQADoOQxG_9z0Ul-",
			"AQADOeQxG4co0Ul-",
		},
		ThicknessPhotos: []string{
			"AQADO-QxG4co0Ul9",
			"AQADOuQxG4co0Ul9",
		},
	},
	{
		Title: "Hyundai Tucson 1.6 Turbo",
		Model: "Tucson",
		Year:  2020,
		Price: 15800000,
		Description: "Полноприводный кроссовер. Турбированный двигатель, автоматическая коробка, " +
			"кожаный салон, панорамная крыша. Пройдена комплексная диагностика.",
	},
	{
		Title: "Kia Rio X-Line",
		Model: "Rio",
		Year:  2021,
		Price: 9200000,
		Description: "Хэтчбек в отличном состоянии. Комплектация Comfort: мультимедиа с CarPlay/Android Auto, " +
			"круиз-контроль, камера заднего вида. Проведена химчистка салона.",
	},
}

func (d *Database) seedSampleAdsLocked() int {
	for _, draft := range sampleAds {
		d.insertAdLocked(draft)
	}
	return len(sampleAds)
}
