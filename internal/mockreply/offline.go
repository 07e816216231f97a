package mockreply

var (
	greetingKeywords   = []string{"hello", "hi", "hey", "namaste", "namaskar"}
	cropKeywords       = []string{"rice", "wheat", "tomato", "potato", "onion", "sugarcane", "cotton", "mango", "crop", "grow", "seed", "sow", "harvest", "yield", "farm"}
	diseaseKeywords    = []string{"disease", "blight", "rot", "rust", "fungus", "pest", "insect", "yellow", "wilt", "spot", "dying", "infect", "treatment", "cure", "keede", "rog"}
	fertilizerKeywords = []string{"fertilizer", "fertiliser", "npk", "nitrogen", "phosphorus", "potassium", "urea", "dap", "compost", "manure", "nutrient", "khad"}
	irrigationKeywords = []string{"water", "irrigation", "drip", "sprinkler", "rain", "drought", "paani", "sinchai"}
	schemeKeywords     = []string{"scheme", "subsidy", "government", "pmkisan", "pm-kisan", "loan", "sarkari", "yojana"}
	platformKeywords   = []string{"farmease", "app", "feature", "how to", "what is", "kaise"}
)

const officerNote = "\n\n_I recommend confirming with your local agriculture officer for precise guidance._"

const (
	GreetingReply = "🌾 **Namaste!** I'm FarmEase AI, your agriculture assistant.\n\n" +
		"I can help you with:\n" +
		"• 🌱 Crop guidance & planning\n" +
		"• 🔬 Disease & pest control\n" +
		"• 🧪 Fertilizer recommendations\n" +
		"• 💧 Irrigation methods\n" +
		"• 📋 Government schemes\n" +
		"• 🚜 FarmEase app features\n\n" +
		"Ask me anything!"

	CropReply = "🌾 **Crop Guidance**\n\n" +
		"Here are best practices for healthy crops:\n\n" +
		"1. **Soil Testing** 🔬 — Get your soil tested to know NPK levels before sowing\n" +
		"2. **Seed Selection** 🌱 — Choose disease-resistant, high-yield varieties suited to your region\n" +
		"3. **Timely Sowing** 📅 — Follow recommended sowing dates for your crop & season\n" +
		"4. **Smart Irrigation** 💧 — Drip irrigation saves 30-50% water vs flood irrigation\n" +
		"5. **Crop Rotation** 🔄 — Rotate crops every season to maintain soil health\n\n" +
		"💡 **Pro Tip:** System of Rice Intensification (SRI) can increase rice yield by 20-50% with less seed and water." +
		officerNote

	DiseaseReply = "🔬 **Plant Disease Diagnosis**\n\n" +
		"Based on common symptoms:\n\n" +
		"**🔬 Likely Causes:**\n" +
		"• Fungal infection — yellow/brown spots, wilting\n" +
		"• Bacterial blight — water-soaked lesions\n" +
		"• Viral — leaf curl, mosaic patterns\n\n" +
		"**💊 Recommended Treatment:**\n" +
		"• Copper fungicide (3g/litre) for fungal issues\n" +
		"• Neem oil spray (5ml/litre) as bio-pesticide\n" +
		"• Remove and burn infected plant material\n\n" +
		"**🛡️ Prevention:**\n" +
		"• Proper plant spacing for air circulation\n" +
		"• Crop rotation every season\n" +
		"• Use disease-resistant seed varieties\n" +
		"• Avoid overhead irrigation — use drip\n\n" +
		"📸 Use FarmEase's **Disease Detection** scanner for AI-powered diagnosis!" +
		officerNote

	FertilizerReply = "🧪 **Fertilizer & Nutrient Guide**\n\n" +
		"**🔍 Identify Deficiency:**\n" +
		"• Yellow leaves + stunted growth → **Nitrogen (N)** deficiency\n" +
		"• Purple/reddish leaves → **Phosphorus (P)** deficiency  \n" +
		"• Leaf edge browning → **Potassium (K)** deficiency\n\n" +
		"**🧪 Recommended Fertilizers:**\n" +
		"• **Urea** (46% N) — for nitrogen needs\n" +
		"• **DAP** (18:46:0) — for phosphorus\n" +
		"• **MOP** (60% K₂O) — for potassium\n" +
		"• **NPK Complex** (10:26:26) — balanced nutrition\n\n" +
		"**⚠️ Safe Usage:**\n" +
		"• Apply in split doses — not all at once\n" +
		"• Mix into soil at 5-7 cm depth\n" +
		"• Avoid urea on waterlogged soil\n" +
		"• Always do a soil test first!" +
		officerNote

	IrrigationReply = "💧 **Irrigation Guide**\n\n" +
		"**Methods (best to least efficient):**\n" +
		"1. **Drip Irrigation** — saves 30-50% water, reduces weeds\n" +
		"2. **Sprinkler** — good for large fields, even distribution\n" +
		"3. **Furrow** — traditional, moderate efficiency\n" +
		"4. **Flood** — least efficient, avoid if possible\n\n" +
		"**💡 Water-Saving Tips:**\n" +
		"• Use mulching to reduce evaporation by 25-30%\n" +
		"• Schedule irrigation early morning or evening\n" +
		"• Monitor soil moisture before watering\n" +
		"• Rainwater harvesting for supplemental irrigation" +
		officerNote

	SchemesReply = "📋 **Government Agricultural Schemes**\n\n" +
		"1. **PM-KISAN** 💰\n" +
		"   - ₹6,000/year direct support\n" +
		"   - For all land-holding farmer families\n\n" +
		"2. **PM Fasal Bima Yojana** 🛡️\n" +
		"   - Crop insurance at subsidized premium\n" +
		"   - Covers all food crops\n\n" +
		"3. **Kisan Credit Card** 🏦\n" +
		"   - Credit up to ₹3 lakhs at 4% interest\n" +
		"   - Easy repayment terms\n\n" +
		"4. **eNAM** 🏪\n" +
		"   - Online trading platform for crops\n" +
		"   - Connect directly with buyers\n\n" +
		"Check the **Schemes** section in FarmEase for eligibility details!" +
		officerNote

	PlatformReply = "📱 **FarmEase Platform Features**\n\n" +
		"🔬 **Disease Detection** — Scan plant photos for AI diagnosis\n" +
		"🌱 **Crop Advisory** — Personalized crop recommendations\n" +
		"🧪 **Fertilizer Guide** — NPK analysis & recommendations\n" +
		"🛒 **Marketplace** — Buy/sell directly with farmers\n" +
		"🚜 **Equipment Rental** — Rent machinery near you\n" +
		"📋 **Gov Schemes** — Browse eligible subsidies & schemes\n" +
		"🤖 **AI Chatbot** — Voice & text farming advice (this!)\n\n" +
		"All designed to **increase productivity, reduce crop loss, and improve farmer income!** 🌾"

	DefaultReply = "🌱 **FarmEase AI — Your Farming Assistant!**\n\n" +
		"I can help you with:\n\n" +
		"• 🌾 **Crop guidance** — Ask about any crop!\n" +
		"• 🔬 **Disease diagnosis** — Describe symptoms\n" +
		"• 🧪 **Fertilizer advice** — NPK recommendations\n" +
		"• 💧 **Irrigation tips** — Save water\n" +
		"• 📋 **Government schemes** — Subsidies & support\n" +
		"• 📱 **FarmEase features** — How to use the app\n\n" +
		"**Try asking:**\n" +
		"_\"How to grow rice?\"_\n" +
		"_\"My crop has yellow leaves\"_\n" +
		"_\"Best fertilizer for wheat\"_\n\n" +
		"I speak English, Hindi, Kannada, Tamil & Telugu! 🌍"
)

// OfflineRules is the client's fallback rule set in priority order.
// A crop mention that also describes a disease or pest symptom is answered
// by the disease rule.
func OfflineRules() []Rule {
	return []Rule{
		{Category: Greeting, Match: ContainsAny(greetingKeywords...), Reply: GreetingReply},
		{Category: Crop, Match: Without(ContainsAny(cropKeywords...), diseaseKeywords...), Reply: CropReply},
		{Category: Disease, Match: ContainsAny(diseaseKeywords...), Reply: DiseaseReply},
		{Category: Fertilizer, Match: ContainsAny(fertilizerKeywords...), Reply: FertilizerReply},
		{Category: Irrigation, Match: ContainsAny(irrigationKeywords...), Reply: IrrigationReply},
		{Category: Schemes, Match: ContainsAny(schemeKeywords...), Reply: SchemesReply},
		{Category: Platform, Match: ContainsAny(platformKeywords...), Reply: PlatformReply},
	}
}

// Offline returns the responder used when the backend cannot be reached.
func Offline() *Responder {
	return New(OfflineRules(), DefaultReply)
}
