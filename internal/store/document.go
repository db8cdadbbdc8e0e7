package store

// Document is the whole application state, persisted as one JSON file.
// Field names and JSON tags match the data.json layout the dashboard reads.
type Document struct {
	Profile    Profile    `json:"profile"`
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Orders     []Order    `json:"orders"`
	Tickets    []Ticket   `json:"tickets"`
	Visits     []Visit    `json:"visits"`
	Reviews    []Review   `json:"reviews"`
}

type Profile struct {
	Name           string          `json:"name"`
	Handle         string          `json:"handle"`
	Type           string          `json:"type"`
	Tagline        string          `json:"tagline,omitempty"`
	Avatar         string          `json:"avatar,omitempty"`
	Socials        *Socials        `json:"socials,omitempty"`
	Payout         *Payout         `json:"payout,omitempty"`
	TelegramWidget *TelegramWidget `json:"telegramWidget,omitempty"`
	ProductsCount  int             `json:"productsCount"`
	SalesCount     int             `json:"salesCount"`
}

type Socials struct {
	Telegram  string `json:"telegram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Discord   string `json:"discord,omitempty"`
	Youtube   string `json:"youtube,omitempty"`
	Website   string `json:"website,omitempty"`
}

type Payout struct {
	Network string `json:"network,omitempty"`
	Address string `json:"address,omitempty"`
}

type TelegramWidget struct {
	Enabled  bool   `json:"enabled"`
	Username string `json:"username"`
	Text     string `json:"text,omitempty"`
}

type ProductType string

const (
	ProductInstantFile   ProductType = "Instant File"
	ProductInstantSerial ProductType = "Instant Serial"
	ProductAccount       ProductType = "Account"
	ProductService       ProductType = "Service"
)

type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Price       string        `json:"price"`
	Type        string        `json:"type"`
	InStock     bool          `json:"inStock"`
	Description string        `json:"description,omitempty"`
	OldPrice    string        `json:"oldPrice,omitempty"`
	ImageColor  string        `json:"imageColor,omitempty"`
	Image       string        `json:"image,omitempty"`
	Images      []string      `json:"images,omitempty"`
	Videos      []string      `json:"videos,omitempty"`
	Content     string        `json:"content,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
	Position    int           `json:"position,omitempty"`
}

type CustomField struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "Pending Payment"
	StatusCompleted      OrderStatus = "Completed"
	StatusCanceled       OrderStatus = "Canceled"
	StatusExpired        OrderStatus = "Expired"
)

// Terminal reports whether the status never transitions again.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled || s == StatusExpired
}

type Order struct {
	ID               string      `json:"id"`
	CustomerEmail    string      `json:"customerEmail"`
	CustomerTelegram string      `json:"customerTelegram"`
	Items            []OrderItem `json:"items"`
	Total            string      `json:"total"`
	Status           OrderStatus `json:"status"`
	Date             string      `json:"date"`
	IP               string      `json:"ip,omitempty"`
	Country          string      `json:"country,omitempty"`
	TrackID          int64       `json:"trackId,omitempty"`
	PayLink          string      `json:"payLink,omitempty"`
}

type OrderItem struct {
	ProductID      string            `json:"productId"`
	Title          string            `json:"title"`
	Price          string            `json:"price"`
	Quantity       int               `json:"quantity"`
	CustomValues   map[string]string `json:"customValues,omitempty"`
	ServiceMessage string            `json:"serviceMessage,omitempty"`
}

type TicketStatus string

const (
	TicketOpen    TicketStatus = "open"
	TicketPending TicketStatus = "pending"
	TicketClosed  TicketStatus = "closed"
)

type Ticket struct {
	ID       string          `json:"id"`
	User     string          `json:"user"`
	Email    string          `json:"email"`
	Subject  string          `json:"subject"`
	Message  string          `json:"message"`
	Status   TicketStatus    `json:"status"`
	Priority string          `json:"priority"`
	Date     string          `json:"date"`
	Messages []TicketMessage `json:"messages"`
}

type TicketMessage struct {
	Sender string `json:"sender"` // "user" or "admin"
	Text   string `json:"text"`
	Time   string `json:"time"`
}

type Visit struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Date string `json:"date"`
	IP   string `json:"ip,omitempty"`
}

type Review struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UserName    string `json:"userName"`
	Rating      int    `json:"rating"` // 1-5
	Comment     string `json:"comment"`
	Date        string `json:"date"`
}

// DefaultDocument is the factory state used on first run and when no base
// snapshot exists.
func DefaultDocument() *Document {
	return &Document{
		Profile: Profile{
			Name:   "My Store",
			Handle: "@store",
			Type:   "Digital Products",
		},
		Products:   []Product{},
		Categories: []Category{},
		Orders:     []Order{},
		Tickets:    []Ticket{},
		Visits:     []Visit{},
		Reviews:    []Review{},
	}
}

// normalize fills collections that older data files may lack so callers can
// append without nil checks.
func (d *Document) normalize() {
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.Tickets == nil {
		d.Tickets = []Ticket{}
	}
	if d.Visits == nil {
		d.Visits = []Visit{}
	}
	if d.Reviews == nil {
		d.Reviews = []Review{}
	}
}
