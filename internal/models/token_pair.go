package models

// TokenPair — пара токенов, выдаваемая при входе и обновлении.
//   - AccessToken — короткоживущий JWT {sub, role};
//   - RefreshToken — долгоживущий JWT {sub, tokenId}, привязанный к записи в БД.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult — результат входа/обновления: пара токенов и профиль.
type AuthResult struct {
	TokenPair
	User UserView `json:"user"`
}
