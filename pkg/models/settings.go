package models

import "time"

// SettingsID is the fixed _id of the singleton settings document.
const SettingsID = "restaurant_settings"

type RestaurantInfo struct {
	Name    string `bson:"name" json:"name"`
	Address struct {
		Line1 string `bson:"line1" json:"line1"`
		Line2 string `bson:"line2" json:"line2"`
	} `bson:"address" json:"address"`
	Phone string `bson:"phone" json:"phone"`
	Hours struct {
		Open  string `bson:"open" json:"open"`
		Close string `bson:"close" json:"close"`
	} `bson:"hours" json:"hours"`
}

type PayPaySettings struct {
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
	QRCodeURL   string `bson:"qrCodeUrl" json:"qrCodeUrl"`
}

type MessengerSettings struct {
	Username     string `bson:"username" json:"username"`
	Link         string `bson:"link" json:"link"`
	BotConnected bool   `bson:"botConnected" json:"botConnected"`
}

type CurrencySettings struct {
	Code     Currency `bson:"code" json:"code"`
	Symbol   string   `bson:"symbol" json:"symbol"`
	Position string   `bson:"position" json:"position"`
}

// NotificationSettings gates client-side alerting; the server stores the
// toggles and hands them to consumers, it never acts on them itself.
type NotificationSettings struct {
	Sound   bool `bson:"sound" json:"sound"`
	Desktop bool `bson:"desktop" json:"desktop"`
	Email   bool `bson:"email" json:"email"`
}

type EmailSettings struct {
	SMTPHost     string `bson:"smtpHost" json:"smtpHost"`
	SMTPPort     int    `bson:"smtpPort" json:"smtpPort"`
	SMTPUser     string `bson:"smtpUser" json:"smtpUser"`
	SMTPPassword string `bson:"smtpPassword" json:"smtpPassword"`
	FromEmail    string `bson:"fromEmail" json:"fromEmail"`
	FromName     string `bson:"fromName" json:"fromName"`
}

type ThemeSettings struct {
	LogoURL        string `bson:"logoUrl" json:"logoUrl"`
	FaviconURL     string `bson:"faviconUrl" json:"faviconUrl"`
	PrimaryColor   string `bson:"primaryColor" json:"primaryColor"`
	SecondaryColor string `bson:"secondaryColor" json:"secondaryColor"`
	AccentColor    string `bson:"accentColor" json:"accentColor"`
	FontFamily     string `bson:"fontFamily" json:"fontFamily"`
	FooterText     string `bson:"footerText" json:"footerText"`
}

// RestaurantSettings is the singleton configuration document.
type RestaurantSettings struct {
	ID            string               `bson:"_id" json:"id"`
	Restaurant    RestaurantInfo       `bson:"restaurant" json:"restaurant"`
	PayPay        PayPaySettings       `bson:"paypay" json:"paypay"`
	Messenger     MessengerSettings    `bson:"messenger" json:"messenger"`
	Currency      CurrencySettings     `bson:"currency" json:"currency"`
	Notifications NotificationSettings `bson:"notifications" json:"notifications"`
	Email         EmailSettings        `bson:"email" json:"email"`
	Theme         ThemeSettings        `bson:"theme" json:"theme"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings returns the document seeded on first run.
func DefaultSettings() *RestaurantSettings {
	s := &RestaurantSettings{
		ID: SettingsID,
		Currency: CurrencySettings{
			Code:     "JPY",
			Symbol:   "¥",
			Position: "before",
		},
		Notifications: NotificationSettings{
			Sound:   true,
			Desktop: true,
		},
		UpdatedAt: time.Now().UTC(),
	}
	s.Restaurant.Name = "Tableside"
	s.Restaurant.Hours.Open = "08:00"
	s.Restaurant.Hours.Close = "20:00"
	return s
}
