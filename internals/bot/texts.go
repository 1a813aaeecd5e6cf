package bot

const startGreeting = "Hi! I'm an announcement bot. Add me to channels and use /announce to send messages and /help to see the menu."

const helpBasic = `🤖 <b>Announcement Bot Help</b>

<b>Basic Commands:</b>
• /start - Start the bot and see your user ID
• /help - Show this help message
`

const helpAdmin = `
<b>Admin Commands:</b>
• /announce - Stage a message for all channels
• /confirm - Send the staged message
• /cancel - Discard the staged message
• /edit - Replace the last sent message in every channel
• /preview - Preview how message will look
• /listchannels - Show all registered channels
• /listadmins - Show all admin users
• /addadmin - Add new admin
• /removeadmin - Remove admin

<b>HTML Tags for Formatting:</b>
• Bold: &lt;b&gt;text&lt;/b&gt;
• Code: &lt;code&gt;text&lt;/code&gt;
• Italic: &lt;i&gt;text&lt;/i&gt;
• Lists: Regular hyphens work (-)
• Links: URLs work automatically

<b>Example Message:</b>
/preview Hey everyone! Here's a &lt;b&gt;bold announcement&lt;/b&gt;:

- First point
- Second point

Using &lt;code&gt;code&lt;/code&gt; for technical terms.
Read more at https://docs.example.com
`

// stagePrompt takes the draft and the channel count.
const stagePrompt = `📢 <b>Preview of Announcement</b>

%s

This message will be sent to %d channels.
Press Confirm or use /confirm to send it, /cancel to discard it.`

const previewText = `📢 <b>Preview of Announcement</b>

%s

This message will be sent to %d channels.
Use /announce with the same message to send it.`

const previewFallback = "⚠️ Preview failed. Format guide:\n" +
	"- <b>bold</b> for bold\n" +
	"- <code>text</code> for code\n" +
	"- <i>text</i> for italic"
