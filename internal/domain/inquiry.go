package domain

type Inquiry struct {
	ArtworkID          string `json:"artworkId" validate:"required"`
	ArtworkTitle       string `json:"artworkTitle" validate:"required"`
	ArtworkDescription string `json:"artworkDescription"`
	ArtworkType        string `json:"artworkType"`
	ArtworkImage       string `json:"artworkImage"`
	CustomerName       string `json:"customerName" validate:"required,max=200"`
	CustomerEmail      string `json:"customerEmail"`
	CustomerComments   string `json:"customerComments" validate:"max=5000"`
	Timestamp          string `json:"timestamp"`
}

type InquiryResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
