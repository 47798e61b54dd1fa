package dto

// ArbitrationRequest records an administrator decision on a contested order.
type ArbitrationRequest struct {
	Decision string `json:"decision" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

// Decision values accepted by the arbitration endpoint.
const (
	DecisionFavorInfluencer = "favor_influencer"
	DecisionFavorMerchant   = "favor_merchant"
)
