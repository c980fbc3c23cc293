package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/utils"
)

// SiteController serves static site content: the FAQ entries and the hero
// and footer copy. All of it comes from config with built-in defaults.
type SiteController struct{}

// NewSiteController creates a new SiteController instance.
func NewSiteController() *SiteController {
	return &SiteController{}
}

var defaultFAQ = []config.FAQEntry{
	{
		Question: "Are your reviews sponsored or paid?",
		Answer:   "Never. We take pride in providing 100% honest, unbiased reviews. We don't accept paid promotions or sponsored content. Every review is based on real experience and thorough research.",
	},
	{
		Question: "How do you make money if you don't accept paid reviews?",
		Answer:   "We believe in transparency. Our site is supported by our loyal community through voluntary contributions and our newsletter subscriptions. This allows us to maintain complete editorial independence.",
	},
	{
		Question: "What's your review process?",
		Answer:   "Each review involves extensive research, personal testing, and community feedback. We purchase all products ourselves to ensure unbiased opinions. Our reviews include both pros and cons, because no product is perfect.",
	},
	{
		Question: "Why should I trust your reviews?",
		Answer:   "Our reputation is built on honesty. We don't sugarcoat our opinions or hide negative aspects of products. Every review includes detailed explanations of our testing process and real results.",
	},
	{
		Question: "How can I suggest a product for review?",
		Answer:   "We welcome suggestions from our community! You can reach out through our contact form or email. We prioritize reviewing products that our audience is most interested in.",
	},
}

// GetFAQ returns the FAQ entries, falling back to the built-in set when the
// config file does not override them.
func (s *SiteController) GetFAQ(ctx *gin.Context) {
	cfg := config.Get()
	faq := cfg.FAQ
	if len(faq) == 0 {
		faq = defaultFAQ
	}
	utils.Success(ctx, gin.H{"items": faq})
}

// GetHero returns the home-page hero and footer copy.
func (s *SiteController) GetHero(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"site_title":   cfg.SiteTitle,
		"hero_title":   cfg.HeroTitle,
		"hero_tagline": cfg.HeroTagline,
		"footer_about": cfg.FooterAbout,
	})
}
