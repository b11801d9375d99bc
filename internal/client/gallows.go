package client

// gallows[i] is drawn after the i-th wrong guess. The last picture
// belongs to a lost round.
var gallows = [...]string{
	`
`,
	`


 ___________
`,
	`
   |
   |
   |
   |
 __|________
`,
	`
   _______
   |
   |
   |
   |
 __|________
`,
	`
   _______
   |/
   |
   |
   |
 __|________
`,
	`
   _______
   |/    |
   |
   |
   |
 __|________
`,
	`
   _______
   |/    |
   |     O
   |
   |
 __|________
`,
	`
   _______
   |/    |
   |     O
   |     |
   |
 __|________
`,
	`
   _______
   |/    |
   |     O
   |    /|\
   |
 __|________
`,
	`
   _______
   |/    |
   |     O
   |    /|\
   |    / \
 __|________
`,
}

func picture(errors uint32) string {
	if int(errors) >= len(gallows) {
		return gallows[len(gallows)-1]
	}
	return gallows[errors]
}
