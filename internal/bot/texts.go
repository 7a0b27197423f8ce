package bot

const (
	textStart = "🌙 Welcome, seeker.\n\n" +
		"The cards are shuffled and the candles are lit. " +
		"Pick what calls to you from the menu below.\n\n" +
		"If you like, tell me your birth date (DD.MM.YYYY) and I will " +
		"remember it for a small surprise."

	textNotSubscribed = "🔒 The circle is open only to those who follow the channel.\n" +
		"Subscribe to %s and come back."

	textBusy = "🕯 One ritual at a time. Let the cards settle first."

	textBirthdaySaved = "📜 Noted. The stars will remember %s."

	textMiniIntro = "🌗 The Mini Spread draws three cards on what surrounds you " +
		"right now. It renews every six hours.\n\nPress the button again when " +
		"you are ready."

	textMiniDenied = "🌗 The cards for this spread are still settling.\n" +
		"Come back in %s.\n\nYour last spread:\n\n%s"

	textCompatIntro = "💞 Think of the person you want to read the bond with. " +
		"Hold them in your mind, then press the button again."

	textYesNoIntro = "🌑 Ask the cards anything that can be answered yes or no. " +
		"Hold the question in your mind, then press the button again.\n\n" +
		"You have %d questions today."

	textYesNoDenied = "🌑 The cards have spoken %d times today and now they rest.\n" +
		"They will answer again after %s."

	textCardAgain = "🔮 You have already drawn your card today.\n\n%s\n\n" +
		"A new card waits for you after six in the morning."

	textUniversePrompt = "🌙 Write your wish or your worry in one message. " +
		"The Universe is listening."

	textUniverseConfirm = "🌙 Here is what I will send:\n\n%s\n\nShall I?"

	textUniverseLater = "💭 Take your time. Press the button again when the words are ready."

	textFallback = "🔮 The cards did not catch that. Pick something from the menu below."

	textSomethingWrong = "🕯 The candles flickered and the reading was lost. Try once more."

	textOracleHasCredits = "🪄 You have %d question(s) with the Oracle.\n" +
		"Write your question in one message."

	textOracleNoCredits = "🪄 The Oracle answers in person, and her time has a price.\n\n" +
		"One question or a pack of six. Choose below."

	textOracleSubmitted = "🪄 Your question is on its way to the Oracle. " +
		"She will answer you here, usually within a day."

	textOracleSubmitFailed = "🪄 Something blocked the path to the Oracle. " +
		"Your question was not spent. Try again in a minute."

	textPaymentThanks = "✨ Payment received. You now have %d question(s) with the Oracle.\n" +
		"Press the Oracle button and ask away."

	textCheckoutFailed = "🕯 The payment gate would not open. Try again in a minute."

	textResetDone = "🗝 The day has been reset for everyone."

	textMorningBroadcast = "☀️ Good morning, seeker. The deck is fresh and your " +
		"card of the day is waiting. 🔮"

	textBirthdayBroadcast = "🎂 The stars aligned the day you were born. " +
		"Happy birthday from the cards and from me. Draw a card today, it will be a kind one."

	textShareBroadcast = "🌙 If the cards have been good to you, share the bot " +
		"with a friend. Good fortune grows when it is passed on."
)
